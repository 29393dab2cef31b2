package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hub47-site/internal/attachments"
	"hub47-site/internal/backend"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/submission"
	"hub47-site/internal/wizard"
)

// ==========================
// Test Helpers
// ==========================

type mockUploader struct{ mock.Mock }

func (m *mockUploader) UploadFile(ctx context.Context, up backend.Upload) error {
	return m.Called(ctx, up).Error(0)
}

func createTestForm(t *testing.T, id string) *Form {
	t.Helper()
	schema := validation.MustSchema(
		validation.Field{Name: "eventId", Required: true, Hidden: true},
		validation.Field{Name: "name", Required: true},
	)
	def, err := wizard.NewDefinition(id, id, schema, []wizard.Step{{ID: "only", Fields: []string{"eventId", "name"}}}, nil)
	require.NoError(t, err)

	seq := &submission.Sequence{Create: func(context.Context, validation.Values) (string, error) { return "1", nil }}
	return Build(def, seq, Deps{}, "test form", "eventId")
}

// ==========================
// Registry Tests
// ==========================

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(createTestForm(t, "b-form"), createTestForm(t, "a-form"))
	require.NoError(t, err)

	f, err := reg.Get("a-form")
	require.NoError(t, err)
	assert.Equal(t, "a-form", f.ID())

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrFormNotFound)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a-form", list[0].ID())
	assert.NoError(t, reg.Check())

	assert.Error(t, reg.Register(createTestForm(t, "a-form")))
	assert.Error(t, reg.Register(&Form{}))
}

func TestRegistry_CheckReportsBrokenDefinition(t *testing.T) {
	f := createTestForm(t, "broken")
	reg, err := NewRegistry(f)
	require.NoError(t, err)

	f.Definition.Steps[0].Fields = []string{"name"}
	err = reg.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "eventId" is not in any step`)
}

func TestForm_BuildDefaults(t *testing.T) {
	f := createTestForm(t, "contact")
	assert.Equal(t, 30000, f.Config.SubmitTimeout)
	assert.Equal(t, apperrors.GetRetryCount(apperrors.ErrCodeBackendUnavailable), f.Config.MaxUploadRetries)
	assert.Equal(t, []string{"eventId"}, f.PresetFields)

	c := f.NewController(validation.Values{"eventId": "3"}, nil)
	assert.Equal(t, "3", c.Snapshot().Values["eventId"])
}

func TestUploadWith(t *testing.T) {
	u := &mockUploader{}
	u.On("UploadFile", mock.Anything, backend.Upload{
		EntityID:    "42",
		FileType:    "volunteer",
		Subtype:     "resume",
		FileName:    "cv.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
	}).Return(nil).Once()

	upload := UploadWith(u, "volunteer", []attachments.Slot{{Name: "resume", Subtype: "resume"}})
	err := upload(context.Background(), "42", attachments.Record{
		Slot: "resume",
		File: attachments.File{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
	})
	require.NoError(t, err)
	u.AssertExpectations(t)
}

// ==========================
// Descriptor Tests
// ==========================

func TestRegistry_Descriptors(t *testing.T) {
	reg, err := NewRegistry(createTestForm(t, "event-registration"))
	require.NoError(t, err)

	got := reg.Descriptors()
	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "event-registration", d.ID)
	assert.Equal(t, "test form", d.Description)
	assert.Equal(t, []string{"eventId"}, d.PresetFields)
	assert.Len(t, d.Fields, 2)
	assert.Equal(t, 30000, d.SubmitTimeout)
	assert.Equal(t, "object", d.InputSchema["type"])
}
