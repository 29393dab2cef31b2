package startupapply

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hub47-site/internal/attachments"
	"hub47-site/internal/backend"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/submission"
)

// ==========================
// Mock Backend
// ==========================

type mockBackend struct{ mock.Mock }

func (m *mockBackend) AddStartupApplication(ctx context.Context, app *backend.StartupApplication) (string, error) {
	args := m.Called(ctx, app)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) UploadFile(ctx context.Context, up backend.Upload) error {
	args := m.Called(ctx, up)
	return args.Error(0)
}

// ==========================
// Test Helpers
// ==========================

func createValidValues() validation.Values {
	return validation.Values{
		"startupName":        "<b>Falcon Labs</b>",
		"contactPerson":      "Ayesha Malik",
		"email":              "ayesha@falcon.ae",
		"phone":              "+971 50 123 4567",
		"website":            "https://falcon.ae",
		"businessModel":      "B2B SaaS subscriptions for logistics firms",
		"startupStage":       "Early Traction",
		"dateEstablished":    "2023-04-01",
		"numberOfEmployees":  "6-10",
		"numberOfFounders":   "2",
		"fundingStage":       "Seed",
		"productDescription": "Route optimisation platform for last-mile delivery",
		"valueProposition":   "Cuts delivery cost by 20%",
		"targetMarket":       "GCC logistics operators",
		"goals":              "Expand to Saudi Arabia and close a seed round",
		"termsAccepted":      true,
	}
}

// ==========================
// Definition Tests
// ==========================

func TestDefinition_PartitionsSchema(t *testing.T) {
	def := Definition()
	assert.Len(t, def.Steps, 5)
	assert.Len(t, Schema().Names(), 22)
	assert.NoError(t, def.Validate())
	assert.NoError(t, Schema().ValidateDocument(createValidValues()))
}

func TestSchema_StepRules(t *testing.T) {
	tests := []struct {
		field  string
		value  interface{}
		reason string
	}{
		{"startupName", "F", "min 2 characters"},
		{"businessModel", "too short", "min 20 characters"},
		{"website", "not a url", "invalid URL"},
		{"startupStage", "Unicorn", "must be one of: Idea Stage, MVP/Prototype, Early Traction, Growth Stage, Scaling"},
		{"dateEstablished", "01/04/2023", "must be a valid date"},
		{"termsAccepted", false, "You must accept the terms"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			res := Schema().Validate(tt.field, tt.value)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestToApplication(t *testing.T) {
	app := ToApplication(createValidValues())
	assert.Equal(t, "Pending", app.Status)
	assert.Equal(t, "Falcon Labs", app.StartupName)
	assert.Equal(t, "Seed", app.FundingStage)
	assert.Equal(t, "2023-04-01", app.DateEstablished)
	assert.Empty(t, app.FundingRequired)
}

// ==========================
// Pipeline Tests
// ==========================

func TestNew_CreateThenUploadDocuments(t *testing.T) {
	b := &mockBackend{}
	b.On("AddStartupApplication", mock.Anything, mock.MatchedBy(func(app *backend.StartupApplication) bool {
		return app.StartupName == "Falcon Labs"
	})).Return("42", nil).Once()
	b.On("UploadFile", mock.Anything, mock.MatchedBy(func(up backend.Upload) bool {
		return up.EntityID == "42" && up.FileType == FileType && up.Subtype == "pitchdeck" && up.FileName == "deck.pdf"
	})).Return(nil).Once()

	form := New(b, forms.Deps{Logger: logger.NewTestLogger(t)})
	receipt, err := form.Pipeline.Submit(context.Background(), submission.Request{
		Form:   FormID,
		Values: createValidValues(),
		Attachments: []attachments.Record{
			{Slot: "pitchDeck", File: attachments.File{Name: "deck.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", receipt.EntityID)
	assert.Equal(t, []string{"pitchDeck"}, receipt.Uploaded)
	b.AssertExpectations(t)
}

func TestNew_CreateFailureSkipsUploads(t *testing.T) {
	b := &mockBackend{}
	b.On("AddStartupApplication", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	form := New(b, forms.Deps{})
	_, err := form.Pipeline.Submit(context.Background(), submission.Request{
		Form:        FormID,
		Values:      createValidValues(),
		Attachments: []attachments.Record{{Slot: "pitchDeck"}},
	})

	var subErr *apperrors.SubmissionError
	require.True(t, errors.As(err, &subErr))
	b.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
}
