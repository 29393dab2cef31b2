package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
	fields []map[string]interface{}
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, msg)
	l.fields = append(l.fields, fields)
}

func TestNormalize(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"standard error passes through", NewFormNotFoundError("x"), ErrCodeFormNotFound},
		{"field validation", &FieldValidationError{Field: "name", Reason: "min 2 characters"}, ErrCodeFieldValidationFailed},
		{"step blocked", &StepBlockedError{Step: 0, StepID: "basic"}, ErrCodeStepBlocked},
		{"attachment rejected", &AttachmentRejectedError{Slot: "pitchDeck", Reason: "exceeds 10MB"}, ErrCodeAttachmentRejected},
		{"submission", &SubmissionError{Form: "contact", Stage: "create", Cause: cause}, ErrCodeSubmissionFailed},
		{"submission timeout", &SubmissionError{Form: "contact", Stage: "create", Cause: context.DeadlineExceeded}, ErrCodeSubmissionTimeout},
		{"partial", &PartialSubmissionError{Form: "volunteer-apply", EntityID: "42", Failed: map[string]error{"resume": cause}}, ErrCodePartialSubmission},
		{"wrapped in progress", fmt.Errorf("%w: session abc", ErrSubmissionInProgress), ErrCodeSubmissionInProgress},
		{"wrapped transition", fmt.Errorf("%w: reset while submitting", ErrInvalidTransition), ErrCodeInvalidTransition},
		{"session not found", fmt.Errorf("%w: abc", ErrSessionNotFound), ErrCodeSessionNotFound},
		{"session limit", fmt.Errorf("%w: 500 live sessions", ErrSessionLimit), ErrCodeSessionLimit},
		{"unknown slot", fmt.Errorf("%w: avatar", ErrUnknownSlot), ErrCodeBadRequest},
		{"plain error", cause, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}

	assert.Nil(t, Normalize(nil))
}

func TestPartialSubmissionError(t *testing.T) {
	uploadErr := stderrors.New("boom")
	err := &PartialSubmissionError{
		Form:     "volunteer-apply",
		EntityID: "42",
		Failed:   map[string]error{"resume": uploadErr, "coverLetter": uploadErr},
	}

	assert.Equal(t, []string{"coverLetter", "resume"}, err.FailedSlots())
	assert.Contains(t, err.Error(), "record 42 created")
	assert.ErrorIs(t, err, uploadErr)
}

func TestSubmissionError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := &SubmissionError{Form: "contact", Stage: "create", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "submit contact failed at create")
}

func TestStepBlockedError_Message(t *testing.T) {
	err := &StepBlockedError{Step: 0, StepID: "basic", Issues: []FieldIssue{
		{Field: "name", Reason: "min 2 characters"},
		{Field: "email", Reason: "invalid email address"},
	}}
	assert.Equal(t, "step 0 (basic) blocked: name: min 2 characters; email: invalid email address", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeStepBlocked))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeSubmissionInProgress))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeSessionNotFound))
	assert.Equal(t, http.StatusMultiStatus, HTTPStatus(ErrCodePartialSubmission))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("SOMETHING_ELSE"))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeFieldValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeAttachmentRejected))
	assert.Equal(t, "STATE", GetErrorCategory(ErrCodeInvalidTransition))
	assert.Equal(t, "STATE", GetErrorCategory(ErrCodeSubmissionInProgress))
	assert.Equal(t, "SUBMISSION", GetErrorCategory(ErrCodePartialSubmission))
	assert.Equal(t, "BACKEND", GetErrorCategory(ErrCodeBackendUnavailable))
	assert.Equal(t, "ROUTING", GetErrorCategory(ErrCodeSessionNotFound))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeBackendUnavailable))
	assert.Equal(t, 1, GetRetryCount(ErrCodeSubmissionTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeStepBlocked))
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeFormNotFound))
}

func TestNormalize_BackendFailures(t *testing.T) {
	refused := fmt.Errorf("add_contact failed (status 500): %w", ErrBackendRejected)
	down := fmt.Errorf("add_contact: %w: connection refused", ErrBackendUnavailable)

	tests := []struct {
		name          string
		err           error
		wantCode      ErrorCode
		wantRetryable bool
		wantBackend   interface{}
	}{
		{"rejected", refused, ErrCodeBackendRejected, false, nil},
		{"unavailable", down, ErrCodeBackendUnavailable, true, nil},
		{"create refused", &SubmissionError{Form: "contact", Stage: "create", Cause: refused}, ErrCodeSubmissionFailed, true, "BACKEND_REJECTED"},
		{"create unreachable", &SubmissionError{Form: "contact", Stage: "create", Cause: down}, ErrCodeSubmissionFailed, true, "BACKEND_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantRetryable, got.Retryable)
			assert.Equal(t, tt.wantBackend, got.Metadata["backend"])
		})
	}

	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeBackendRejected))
	assert.Equal(t, ErrorCode(""), BackendCode(stderrors.New("plain")))
}

func TestErrorHandler_WriteHTTP(t *testing.T) {
	t.Run("client error logs warning", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/abc/advance", nil)

		h.WriteHTTP(rec, req, &StepBlockedError{Step: 1, StepID: "details", Issues: []FieldIssue{{Field: "goals", Reason: "min 20 characters"}}})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Error StandardError `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, ErrCodeStepBlocked, body.Error.Code)
		assert.Len(t, log.warns, 1)
		assert.Empty(t, log.errors)
		assert.Equal(t, "/api/sessions/abc/advance", log.fields[0]["path"])
	})

	t.Run("server error logs error", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)
		rec := httptest.NewRecorder()

		h.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), stderrors.New("nil pointer"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Len(t, log.errors, 1)
	})
}
