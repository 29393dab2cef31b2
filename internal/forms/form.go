// Package forms wires each public HUB47 form to the generic wizard: a schema, a
// step partition, attachment slots and a submission pipeline.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"hub47-site/internal/attachments"
	"hub47-site/internal/backend"
	"hub47-site/internal/common/config"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/submission"
	"hub47-site/internal/wizard"
)

type Form struct {
	Definition  *wizard.Definition
	Pipeline    submission.Pipeline
	Description string
	// PresetFields are hidden fields the caller must supply when a session starts.
	PresetFields []string
	Config       config.FormConfig
}

func (f *Form) ID() string { return f.Definition.ID }

// Preset filters raw to the declared preset fields and validates them.
func (f *Form) Preset(raw map[string]interface{}) (validation.Values, error) {
	out := make(validation.Values, len(f.PresetFields))
	for _, name := range f.PresetFields {
		v := raw[name]
		if res := f.Definition.Schema.Validate(name, v); !res.Valid {
			return nil, res.Err()
		}
		out[name] = v
	}
	return out, nil
}

// NewController starts a fresh wizard for this form.
func (f *Form) NewController(preset validation.Values, log logger.Logger) *wizard.Controller {
	return wizard.NewController(f.Definition, wizard.Options{
		Pipeline:      f.Pipeline,
		SubmitTimeout: config.GetDuration(f.Config.SubmitTimeout),
		Preset:        preset,
		Logger:        log,
	})
}

// Deps are shared by every form constructor.
type Deps struct {
	Config config.FormConfig
	Logger logger.Logger
	Hooks  []submission.Hook
	Now    func() time.Time
}

// WithDefaults fills a no-op logger, the wall clock, the submit timeout and upload retries.
func (d Deps) WithDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Config.SubmitTimeout == 0 {
		d.Config.SubmitTimeout = 30000
	}
	if d.Config.MaxUploadRetries == 0 {
		d.Config.MaxUploadRetries = apperrors.GetRetryCount(apperrors.ErrCodeBackendUnavailable)
	}
	return d
}

// Build assembles a form around seq, applying retry config and observation hooks.
func Build(def *wizard.Definition, seq *submission.Sequence, deps Deps, description string, presets ...string) *Form {
	deps = deps.WithDefaults()
	seq.Form = def.ID
	seq.Retries = deps.Config.MaxUploadRetries
	if seq.Backoff == 0 {
		seq.Backoff = 500 * time.Millisecond
	}
	seq.Logger = deps.Logger

	return &Form{
		Definition:   def,
		Pipeline:     submission.Observe(seq, deps.Hooks...),
		Description:  description,
		PresetFields: presets,
		Config:       deps.Config,
	}
}

// Uploader is the part of the backend client that stores files.
type Uploader interface {
	UploadFile(ctx context.Context, up backend.Upload) error
}

// UploadWith posts a staged record under fileType, tagging it with the slot's subtype.
func UploadWith(u Uploader, fileType string, slots []attachments.Slot) submission.UploadFunc {
	subtypes := make(map[string]string, len(slots))
	for _, s := range slots {
		subtypes[s.Name] = s.Subtype
	}
	return func(ctx context.Context, entityID string, rec attachments.Record) error {
		return u.UploadFile(ctx, backend.Upload{
			EntityID:    entityID,
			FileType:    fileType,
			Subtype:     subtypes[rec.Slot],
			FileName:    rec.File.Name,
			ContentType: rec.File.ContentType,
			Data:        rec.File.Data,
		})
	}
}

// Registry holds the forms served by the site.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

func NewRegistry(forms ...*Form) (*Registry, error) {
	r := &Registry{forms: make(map[string]*Form, len(forms))}
	for _, f := range forms {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(f *Form) error {
	if f == nil || f.Definition == nil {
		return fmt.Errorf("form without definition")
	}
	if err := f.Definition.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.forms[f.ID()]; dup {
		return fmt.Errorf("form %s registered twice", f.ID())
	}
	r.forms[f.ID()] = f
	return nil
}

func (r *Registry) Get(id string) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFormNotFound, id)
	}
	return f, nil
}

// List returns forms sorted by id.
func (r *Registry) List() []*Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Form, 0, len(r.forms))
	for _, f := range r.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Check re-validates every definition's step partition.
func (r *Registry) Check() error {
	var errs []error
	for _, f := range r.List() {
		if err := f.Definition.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
