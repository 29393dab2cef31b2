package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/wizard"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) AddMembership(ctx context.Context, rec *backend.MembershipRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func createValues() validation.Values {
	return validation.Values{
		"fullName":       "Hina Rauf",
		"email":          "hina@oasis.io",
		"phone":          "+971 4 555 0000",
		"organisation":   "Oasis Robotics",
		"designation":    "COO",
		"membershipType": "premium",
		"memberType":     "corporate",
		"hearAboutUs":    "event",
	}
}

func TestDefinition_SingleStep(t *testing.T) {
	def := Definition()
	require.Len(t, def.Steps, 1)
	assert.Equal(t, Schema().Names(), def.Steps[0].Fields)
}

func TestSchema_MembershipTypeEnum(t *testing.T) {
	res := Schema().Validate("membershipType", "gold")
	assert.False(t, res.Valid)
	assert.Equal(t, "must be one of: enterprise, premium, basic, individual", res.Reason)
}

func TestToRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := ToRecord(createValues(), now)

	assert.Equal(t, "premium", rec.Membership)
	assert.Equal(t, "event", rec.Notes)
	assert.Equal(t, "2026-03-01T09:30:00Z", rec.EntryDate)
	assert.True(t, rec.Status)
	assert.Equal(t, "Oasis Robotics", rec.OrganizationName)

	values := createValues()
	delete(values, "hearAboutUs")
	assert.Equal(t, "COO", ToRecord(values, now).Notes)
}

func TestForm_Submit(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	b := &mockBackend{}
	b.On("AddMembership", mock.Anything, mock.MatchedBy(func(rec *backend.MembershipRecord) bool {
		return rec.EntryDate == "2026-03-01T09:30:00Z" && rec.Name == "Hina Rauf"
	})).Return(nil).Once()

	form := New(b, forms.Deps{Now: func() time.Time { return now }})
	c := form.NewController(nil, logger.NewTestLogger(t))
	_, err := c.SetValues(createValues())
	require.NoError(t, err)

	// Single step: advance is a no-op and submit is allowed immediately.
	require.NoError(t, c.Advance())
	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wizard.StatusSucceeded, c.Status())
	b.AssertExpectations(t)
}
