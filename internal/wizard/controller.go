package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hub47-site/internal/attachments"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/metrics"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/submission"
)

type Status string

const (
	StatusEditing            Status = "editing"
	StatusSubmitting         Status = "submitting"
	StatusSucceeded          Status = "succeeded"
	StatusPartiallySucceeded Status = "partially_succeeded"
	StatusFailed             Status = "failed"
)

const defaultSubmitTimeout = 30 * time.Second

// State is a point-in-time copy of a controller.
type State struct {
	Form        string                   `json:"form"`
	CurrentStep int                      `json:"currentStep"`
	StepID      string                   `json:"stepId"`
	TotalSteps  int                      `json:"totalSteps"`
	Progress    float64                  `json:"progress"`
	Status      Status                   `json:"status"`
	Values      validation.Values        `json:"values"`
	Attachments []attachments.Record     `json:"attachments"`
	LastError   *apperrors.StandardError `json:"lastError,omitempty"`
	Receipt     *submission.Receipt      `json:"receipt,omitempty"`
}

type Options struct {
	Pipeline      submission.Pipeline
	SubmitTimeout time.Duration
	// Preset holds hidden values fixed at creation, e.g. the event id from the route.
	Preset validation.Values
	Logger logger.Logger
}

// Controller owns one visitor's progress through a Definition. All methods are
// safe for concurrent use; Submit releases the lock while the pipeline runs.
type Controller struct {
	mu sync.Mutex

	def      *Definition
	pipeline submission.Pipeline
	timeout  time.Duration
	preset   validation.Values
	logger   logger.Logger

	step    int
	values  validation.Values
	status  Status
	staging *attachments.Staging
	lastErr error
	receipt *submission.Receipt
}

func NewController(def *Definition, opts Options) *Controller {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = defaultSubmitTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	c := &Controller{
		def:      def,
		pipeline: opts.Pipeline,
		timeout:  opts.SubmitTimeout,
		preset:   opts.Preset.Clone(),
		logger:   opts.Logger.WithFields(map[string]interface{}{"form": def.ID}),
		staging:  attachments.NewStaging(def.Slots),
	}
	c.resetLocked()
	return c
}

func (c *Controller) Definition() *Definition { return c.def }

func (c *Controller) resetLocked() {
	c.step = 0
	c.values = c.preset.Clone()
	c.status = StatusEditing
	c.staging.Clear()
	c.lastErr = nil
	c.receipt = nil
}

// guardEdit rejects mutations while a submission is running or after the form is done.
func (c *Controller) guardEdit(action string) error {
	switch c.status {
	case StatusSubmitting:
		return fmt.Errorf("%w: %s during submission", apperrors.ErrSubmissionInProgress, action)
	case StatusSucceeded:
		return fmt.Errorf("%w: %s after successful submission", apperrors.ErrInvalidTransition, action)
	}
	return nil
}

// touch moves a failed form back to editing after the visitor changes something.
func (c *Controller) touch() {
	if c.status == StatusFailed {
		c.status = StatusEditing
		c.lastErr = nil
	}
}

// SetValue stores value and reports its validation result. An invalid value is still
// stored so the visitor can keep typing.
func (c *Controller) SetValue(name string, value interface{}) (validation.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardEdit("edit"); err != nil {
		return validation.Result{}, err
	}
	if c.status == StatusPartiallySucceeded {
		return validation.Result{}, fmt.Errorf("%w: record already created, only attachments can change", apperrors.ErrInvalidTransition)
	}
	if err := c.checkEditable(name); err != nil {
		return validation.Result{}, err
	}

	c.values[name] = value
	c.touch()
	return c.def.Schema.Validate(name, value), nil
}

// SetValues applies a batch. Nothing is stored if any name is not editable.
func (c *Controller) SetValues(values validation.Values) ([]validation.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardEdit("edit"); err != nil {
		return nil, err
	}
	if c.status == StatusPartiallySucceeded {
		return nil, fmt.Errorf("%w: record already created, only attachments can change", apperrors.ErrInvalidTransition)
	}
	for name := range values {
		if err := c.checkEditable(name); err != nil {
			return nil, err
		}
	}

	results := make([]validation.Result, 0, len(values))
	for _, name := range c.def.Schema.Names() {
		v, ok := values[name]
		if !ok {
			continue
		}
		c.values[name] = v
		results = append(results, c.def.Schema.Validate(name, v))
	}
	c.touch()
	return results, nil
}

func (c *Controller) checkEditable(name string) error {
	f, ok := c.def.Schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownField, name)
	}
	if f.Hidden {
		return fmt.Errorf("%w: %s is not editable", apperrors.ErrUnknownField, name)
	}
	return nil
}

// Advance moves forward when the current step is valid. At the last step it does nothing.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardNavigation("advance"); err != nil {
		return err
	}
	if c.step >= c.def.LastStep() {
		return nil
	}

	if blocked := c.blockedLocked(c.step); blocked != nil {
		metrics.WizardTransitions.WithLabelValues(c.def.ID, "advance", "blocked").Inc()
		return blocked
	}
	c.step++
	metrics.WizardTransitions.WithLabelValues(c.def.ID, "advance", "ok").Inc()
	return nil
}

// Retreat moves back one step without validating anything.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardNavigation("retreat"); err != nil {
		return err
	}
	if c.step == 0 {
		return nil
	}
	c.step--
	metrics.WizardTransitions.WithLabelValues(c.def.ID, "retreat", "ok").Inc()
	return nil
}

func (c *Controller) guardNavigation(action string) error {
	if err := c.guardEdit(action); err != nil {
		return err
	}
	if c.status == StatusPartiallySucceeded {
		return fmt.Errorf("%w: %s after record creation", apperrors.ErrInvalidTransition, action)
	}
	return nil
}

// blockedLocked collects field issues and missing required attachments for step i.
func (c *Controller) blockedLocked(i int) *apperrors.StepBlockedError {
	issues := c.def.StepIssues(i, c.values)
	for _, slot := range c.staging.MissingRequired() {
		if c.def.stepOfSlot(slot) == i {
			issues = append(issues, apperrors.FieldIssue{Field: slot, Code: validation.CodeRequired, Reason: "required"})
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &apperrors.StepBlockedError{Step: i, StepID: c.def.Steps[i].ID, Issues: issues}
}

// preflightLocked checks every step, so values edited out of order cannot slip through.
func (c *Controller) preflightLocked() error {
	for i := range c.def.Steps {
		if blocked := c.blockedLocked(i); blocked != nil {
			return blocked
		}
	}
	return c.def.Schema.ValidateDocument(c.values)
}

type outcome struct {
	receipt *submission.Receipt
	err     error
}

// Submit sends the form. It is only allowed from the last step, and never twice at once.
func (c *Controller) Submit(ctx context.Context) (*submission.Receipt, error) {
	c.mu.Lock()
	switch c.status {
	case StatusSubmitting:
		c.mu.Unlock()
		return nil, apperrors.ErrSubmissionInProgress
	case StatusSucceeded:
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: already submitted", apperrors.ErrInvalidTransition)
	}
	if c.step != c.def.LastStep() {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: submit from step %d of %d", apperrors.ErrInvalidTransition, c.step+1, len(c.def.Steps))
	}
	if c.pipeline == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("form %s has no submission pipeline", c.def.ID)
	}
	if err := c.preflightLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	req := submission.Request{
		Form:        c.def.ID,
		Values:      c.values.Clone(),
		Attachments: c.staging.Records(),
	}
	if c.status == StatusPartiallySucceeded {
		req.Prior = c.receipt
	}
	c.status = StatusSubmitting
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("submitting form", map[string]interface{}{
		"attachments": len(req.Attachments),
		"resume":      req.Prior != nil,
	})

	res := c.run(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLocked(res)
	return res.receipt, res.err
}

// run executes the pipeline under the submit timeout. A pipeline that ignores its
// context is abandoned when the deadline passes.
func (c *Controller) run(ctx context.Context, req submission.Request) outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("submission pipeline panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
				done <- outcome{err: &apperrors.SubmissionError{
					Form:  req.Form,
					Stage: "pipeline",
					Code:  apperrors.ErrCodeInternal,
					Cause: fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		receipt, err := c.pipeline.Submit(ctx, req)
		done <- outcome{receipt: receipt, err: err}
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return outcome{err: &apperrors.SubmissionError{
			Form:  req.Form,
			Stage: "pipeline",
			Code:  apperrors.ErrCodeSubmissionTimeout,
			Cause: fmt.Errorf("%w: %w", apperrors.ErrSubmissionTimeout, ctx.Err()),
		}}
	}
}

func (c *Controller) finishLocked(res outcome) {
	var partial *apperrors.PartialSubmissionError
	switch {
	case res.err == nil:
		c.status = StatusSucceeded
		c.receipt = res.receipt
		c.staging.Clear()
		c.logger.Info("form submitted", map[string]interface{}{"entityId": entityID(res.receipt)})
	case errors.As(res.err, &partial) && res.receipt != nil:
		c.status = StatusPartiallySucceeded
		c.receipt = res.receipt
		c.lastErr = res.err
		c.logger.Warn("form partially submitted", map[string]interface{}{
			"entityId":    res.receipt.EntityID,
			"failedSlots": partial.FailedSlots(),
		})
	default:
		c.status = StatusFailed
		c.lastErr = res.err
		c.logger.Warn("form submission failed", map[string]interface{}{"error": res.err.Error()})
	}
}

func entityID(r *submission.Receipt) string {
	if r == nil {
		return ""
	}
	return r.EntityID
}

// Reset returns to step 0 with empty values and releases staged files.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusSubmitting {
		return fmt.Errorf("%w: reset during submission", apperrors.ErrSubmissionInProgress)
	}
	c.resetLocked()
	return nil
}

// Release drops staged file buffers. Used when a session is discarded.
func (c *Controller) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staging.Clear()
}

// Stage delegates to attachment staging. A rejection is a result, not an error.
func (c *Controller) Stage(slot string, f attachments.File) (attachments.StageResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardEdit("stage"); err != nil {
		return attachments.StageResult{}, err
	}
	if _, ok := c.staging.Slot(slot); !ok {
		return attachments.StageResult{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownSlot, slot)
	}
	if c.status == StatusPartiallySucceeded && c.receipt.HasUploaded(slot) {
		return attachments.StageResult{}, fmt.Errorf("%w: %s already uploaded", apperrors.ErrInvalidTransition, slot)
	}

	res := c.staging.Stage(slot, f)
	result := "accepted"
	if !res.Accepted {
		result = "rejected"
	} else {
		c.touch()
	}
	metrics.AttachmentsStaged.WithLabelValues(c.def.ID, slot, result).Inc()
	return res, nil
}

func (c *Controller) Unstage(slot string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardEdit("unstage"); err != nil {
		return err
	}
	if err := c.staging.Unstage(slot); err != nil {
		return err
	}
	c.touch()
	return nil
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Form:        c.def.ID,
		CurrentStep: c.step,
		StepID:      c.def.Steps[c.step].ID,
		TotalSteps:  len(c.def.Steps),
		Progress:    c.def.Progress(c.step),
		Status:      c.status,
		Values:      c.values.Clone(),
		Attachments: c.staging.Records(),
		LastError:   apperrors.Normalize(c.lastErr),
	}
	if c.receipt != nil {
		r := *c.receipt
		r.Uploaded = append([]string(nil), c.receipt.Uploaded...)
		st.Receipt = &r
	}
	return st
}
