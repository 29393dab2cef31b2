package eventregistration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hub47-site/internal/backend"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/wizard"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) AddEventRegistration(ctx context.Context, reg *backend.EventRegistration) error {
	return m.Called(ctx, reg).Error(0)
}

func createValues() validation.Values {
	return validation.Values{
		"fullName":      "Bilal Hassan",
		"organisation":  "Desert Ventures",
		"email":         "bilal@desert.vc",
		"contactNumber": "+971 55 000 1111",
		"hearAboutUs":   "LinkedIn",
		"currentStatus": "entrepreneur",
		"comments":      "Looking forward to it <script>alert(1)</script>",
	}
}

func fill(t *testing.T, c *wizard.Controller) {
	t.Helper()
	_, err := c.SetValues(createValues())
	require.NoError(t, err)
	require.NoError(t, c.Advance())
}

func TestForm_PresetEventID(t *testing.T) {
	form := New(&mockBackend{}, forms.Deps{})

	preset, err := form.Preset(map[string]interface{}{"eventId": "7", "fullName": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, validation.Values{"eventId": "7"}, preset)

	_, err = form.Preset(map[string]interface{}{})
	var fieldErr *apperrors.FieldValidationError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "eventId", fieldErr.Field)

	_, err = form.Preset(map[string]interface{}{"eventId": "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a positive event id")
}

func TestToRegistration(t *testing.T) {
	values := createValues()
	values["eventId"] = "12"

	reg, err := ToRegistration(values)
	require.NoError(t, err)
	assert.Equal(t, 12, reg.EventID)
	assert.Equal(t, "Desert Ventures", reg.Organization)
	assert.Equal(t, "LinkedIn", reg.Workshop)
	assert.Equal(t, "entrepreneur", reg.CurrentOccupation)
	assert.Equal(t, "Looking forward to it", reg.AdditionalComments)
}

func TestForm_SubmitAcknowledged(t *testing.T) {
	b := &mockBackend{}
	b.On("AddEventRegistration", mock.Anything, mock.MatchedBy(func(reg *backend.EventRegistration) bool {
		return reg.EventID == 7 && reg.Name == "Bilal Hassan"
	})).Return(nil).Once()

	form := New(b, forms.Deps{Logger: logger.NewTestLogger(t)})
	c := form.NewController(validation.Values{"eventId": "7"}, logger.NewTestLogger(t))
	fill(t, c)

	receipt, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipt.EntityID)
	assert.Equal(t, wizard.StatusSucceeded, c.Status())
	b.AssertExpectations(t)
}

func TestForm_SubmitNotAcknowledged(t *testing.T) {
	b := &mockBackend{}
	b.On("AddEventRegistration", mock.Anything, mock.Anything).Return(backend.ErrNotAcknowledged)

	form := New(b, forms.Deps{})
	c := form.NewController(validation.Values{"eventId": "7"}, logger.NewTestLogger(t))
	fill(t, c)

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, backend.ErrNotAcknowledged)
	assert.Equal(t, wizard.StatusFailed, c.Status())
	assert.Equal(t, "Bilal Hassan", c.Snapshot().Values["fullName"])
}
