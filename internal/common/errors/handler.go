package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"
)

// ErrorHandler turns any error produced by the site into a StandardError response.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteHTTP normalizes err, logs it and writes it as JSON with the mapped status.
func (h *ErrorHandler) WriteHTTP(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(r, stdErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": stdErr})
}

// Normalize maps typed and sentinel errors onto StandardError.
func Normalize(err error) *StandardError {
	var (
		stdErr     *StandardError
		fieldErr   *FieldValidationError
		blocked    *StepBlockedError
		rejected   *AttachmentRejectedError
		partial    *PartialSubmissionError
		submission *SubmissionError
	)

	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &fieldErr):
		return NewFieldValidationFailedError(fieldErr.Field, fieldErr.Reason)
	case stderrors.As(err, &blocked):
		return NewStepBlockedError(blocked)
	case stderrors.As(err, &rejected):
		return NewAttachmentRejectedError(rejected.Slot, rejected.Reason)
	case stderrors.As(err, &partial):
		return NewPartialSubmissionError(partial)
	case stderrors.Is(err, ErrSubmissionTimeout), stderrors.Is(err, context.DeadlineExceeded):
		form := ""
		if stderrors.As(err, &submission) {
			form = submission.Form
		}
		return NewSubmissionTimeoutError(form)
	case stderrors.As(err, &submission):
		stdErr = NewSubmissionFailedError(submission.Form, submission.Cause)
		if code := BackendCode(submission.Cause); code != "" {
			stdErr.Metadata = map[string]interface{}{"backend": string(code)}
		}
		return stdErr
	case stderrors.Is(err, ErrSubmissionInProgress):
		return NewSubmissionInProgressError()
	case stderrors.Is(err, ErrInvalidTransition):
		return NewInvalidTransitionError(err.Error())
	case stderrors.Is(err, ErrSessionNotFound):
		return NewSessionNotFoundError(err.Error())
	case stderrors.Is(err, ErrSessionLimit):
		return NewSessionLimitError(err.Error())
	case stderrors.Is(err, ErrFormNotFound):
		return NewFormNotFoundError(err.Error())
	case stderrors.Is(err, ErrUnknownField), stderrors.Is(err, ErrUnknownSlot):
		return NewBadRequestError(err.Error())
	case stderrors.Is(err, ErrBackendRejected):
		return NewBackendRejectedError(err)
	case stderrors.Is(err, ErrBackendUnavailable):
		return NewBackendUnavailableError(err)
	}

	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
	}
	if r != nil {
		fields["method"] = r.Method
		fields["path"] = r.URL.Path
	}

	// Client mistakes are expected traffic.
	if status < http.StatusInternalServerError {
		h.logger.Warn("Request rejected", fields)
		return
	}
	h.logger.Error("Request failed", fields)
}
