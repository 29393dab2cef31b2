package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeFieldValidationFailed ErrorCode = "FIELD_VALIDATION_FAILED"
	ErrCodeStepBlocked           ErrorCode = "STEP_BLOCKED"
	ErrCodeAttachmentRejected    ErrorCode = "ATTACHMENT_REJECTED"
	ErrCodeDocumentInvalid       ErrorCode = "DOCUMENT_INVALID"

	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"
	ErrCodePartialSubmission    ErrorCode = "PARTIAL_SUBMISSION"
	ErrCodeSubmissionTimeout    ErrorCode = "SUBMISSION_TIMEOUT"
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"

	ErrCodeFormNotFound    ErrorCode = "FORM_NOT_FOUND"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionLimit    ErrorCode = "SESSION_LIMIT_REACHED"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	ErrCodeBackendUnavailable     ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendRejected        ErrorCode = "BACKEND_REJECTED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks; detailed types below wrap them.
var (
	ErrSubmissionInProgress = stderrors.New("SUBMISSION_IN_PROGRESS")
	ErrInvalidTransition    = stderrors.New("INVALID_TRANSITION")
	ErrSubmissionTimeout    = stderrors.New("SUBMISSION_TIMEOUT")
	ErrSessionNotFound      = stderrors.New("SESSION_NOT_FOUND")
	ErrSessionLimit         = stderrors.New("SESSION_LIMIT_REACHED")
	ErrFormNotFound         = stderrors.New("FORM_NOT_FOUND")
	ErrUnknownField         = stderrors.New("UNKNOWN_FIELD")
	ErrUnknownSlot          = stderrors.New("UNKNOWN_SLOT")

	// Backend clients wrap these so callers can tell a dead backend from a refusal.
	ErrBackendUnavailable = stderrors.New("BACKEND_UNAVAILABLE")
	ErrBackendRejected    = stderrors.New("BACKEND_REJECTED")
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// FieldValidationError reports one field failing its rule. It is a result, not a fault.
type FieldValidationError struct {
	Field  string
	Code   string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// FieldIssue is one offending field inside a StepBlockedError.
type FieldIssue struct {
	Field  string `json:"field"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// StepBlockedError is returned when advance or submit is attempted on an invalid step.
type StepBlockedError struct {
	Step   int
	StepID string
	Issues []FieldIssue
}

func (e *StepBlockedError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Reason)
	}
	return fmt.Sprintf("step %d (%s) blocked: %s", e.Step, e.StepID, strings.Join(parts, "; "))
}

type AttachmentRejectedError struct {
	Slot   string
	Reason string
}

func (e *AttachmentRejectedError) Error() string {
	return fmt.Sprintf("attachment %s rejected: %s", e.Slot, e.Reason)
}

// SubmissionError wraps a failed network call made by the submission pipeline.
type SubmissionError struct {
	Form  string
	Stage string
	Code  ErrorCode
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s failed at %s: %v", e.Form, e.Stage, e.Cause)
}

func (e *SubmissionError) Unwrap() error { return e.Cause }

// PartialSubmissionError means the primary record exists but some uploads failed.
type PartialSubmissionError struct {
	Form     string
	EntityID string
	Failed   map[string]error
}

func (e *PartialSubmissionError) Error() string {
	return fmt.Sprintf("submit %s: record %s created, uploads failed for %s",
		e.Form, e.EntityID, strings.Join(e.FailedSlots(), ", "))
}

// FailedSlots returns the failed slot names in sorted order.
func (e *PartialSubmissionError) FailedSlots() []string {
	out := make([]string, 0, len(e.Failed))
	for slot := range e.Failed {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}

func (e *PartialSubmissionError) Unwrap() []error {
	out := make([]error, 0, len(e.Failed))
	for _, slot := range e.FailedSlots() {
		out = append(out, e.Failed[slot])
	}
	return out
}

func NewFieldValidationFailedError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldValidationFailed,
		Message:   "Field value failed validation",
		Details:   fmt.Sprintf("field: %s, reason: %s", field, reason),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field, "reason": reason},
		Timestamp: time.Now().UTC(),
	}
}

func NewStepBlockedError(e *StepBlockedError) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepBlocked,
		Message:   "Current step has invalid fields",
		Details:   e.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"step": e.Step, "stepId": e.StepID, "issues": e.Issues},
		Timestamp: time.Now().UTC(),
	}
}

func NewAttachmentRejectedError(slot, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAttachmentRejected,
		Message:   "Attachment was not accepted",
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"slot": slot, "reason": reason},
		Timestamp: time.Now().UTC(),
	}
}

func NewDocumentInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentInvalid,
		Message:   "Form values failed document validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSubmissionFailedError(form string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   "We could not submit your form. Please try again.",
		Details:   fmt.Sprintf("form: %s, error: %s", form, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPartialSubmissionError(e *PartialSubmissionError) *StandardError {
	return &StandardError{
		Code:      ErrCodePartialSubmission,
		Message:   "Your form was received but some files could not be uploaded",
		Details:   e.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"entityId": e.EntityID, "failedSlots": e.FailedSlots()},
		Timestamp: time.Now().UTC(),
	}
}

func NewSubmissionTimeoutError(form string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionTimeout,
		Message:   "Submission timed out",
		Details:   fmt.Sprintf("form: %s", form),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSubmissionInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInProgress,
		Message:   "A submission is already in progress",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidTransitionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Action not allowed in the current state",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewFormNotFoundError(form string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormNotFound,
		Message:   "Form not found",
		Details:   fmt.Sprintf("form: %s", form),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found or expired",
		Details:   fmt.Sprintf("sessionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionLimitError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionLimit,
		Message:   "Too many open form sessions",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewBadRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBadRequest,
		Message:   "Malformed request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewBackendUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "HUB47 backend is unavailable",
		Details:   err.Error(),
		Retryable: IsRetryableErrorCode(ErrCodeBackendUnavailable),
		Timestamp: time.Now().UTC(),
	}
}

func NewBackendRejectedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendRejected,
		Message:   "HUB47 backend refused the request",
		Details:   err.Error(),
		Retryable: IsRetryableErrorCode(ErrCodeBackendRejected),
		Timestamp: time.Now().UTC(),
	}
}

// BackendCode reports which backend failure err wraps, or "" for neither.
func BackendCode(err error) ErrorCode {
	switch {
	case stderrors.Is(err, ErrBackendRejected):
		return ErrCodeBackendRejected
	case stderrors.Is(err, ErrBackendUnavailable):
		return ErrCodeBackendUnavailable
	default:
		return ""
	}
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

var httpStatusMapping = map[ErrorCode]int{
	ErrCodeFieldValidationFailed:  http.StatusUnprocessableEntity,
	ErrCodeStepBlocked:            http.StatusUnprocessableEntity,
	ErrCodeAttachmentRejected:     http.StatusUnprocessableEntity,
	ErrCodeDocumentInvalid:        http.StatusUnprocessableEntity,
	ErrCodeSubmissionFailed:       http.StatusBadGateway,
	ErrCodePartialSubmission:      http.StatusMultiStatus,
	ErrCodeSubmissionTimeout:      http.StatusGatewayTimeout,
	ErrCodeSubmissionInProgress:   http.StatusConflict,
	ErrCodeInvalidTransition:      http.StatusConflict,
	ErrCodeFormNotFound:           http.StatusNotFound,
	ErrCodeSessionNotFound:        http.StatusNotFound,
	ErrCodeSessionLimit:           http.StatusServiceUnavailable,
	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeBackendUnavailable:     http.StatusBadGateway,
	ErrCodeBackendRejected:        http.StatusBadGateway,
	ErrCodeNotificationSendFailed: http.StatusInternalServerError,
}

// HTTPStatus maps a code to the status the API answers with.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBackendUnavailable,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSubmissionTimeout,
		ErrCodeSessionLimit:
		return 1

	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeInvalidTransition:
		return "STATE"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") ||
		strings.Contains(codeStr, "BLOCKED") || strings.HasPrefix(codeStr, "ATTACHMENT"):
		return "VALIDATION"
	case code == ErrCodeSubmissionInProgress:
		return "STATE"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "BACKEND"):
		return "BACKEND"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "DISABLED"):
		return "ROUTING"
	default:
		return "OTHER"
	}
}
