// Package builtin assembles the site's forms from configuration.
package builtin

import (
	"context"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/config"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/forms"
	"hub47-site/internal/forms/contact"
	"hub47-site/internal/forms/eventregistration"
	"hub47-site/internal/forms/membership"
	"hub47-site/internal/forms/startupapply"
	"hub47-site/internal/forms/volunteerapply"
	"hub47-site/internal/submission"
)

// Backend covers every HUB47 call made by the built-in forms.
type Backend interface {
	AddStartupApplication(ctx context.Context, app *backend.StartupApplication) (string, error)
	AddVolunteer(ctx context.Context, rec *backend.VolunteerRecord) (string, error)
	UploadFile(ctx context.Context, up backend.Upload) error
	AddEventRegistration(ctx context.Context, reg *backend.EventRegistration) error
	AddMembership(ctx context.Context, rec *backend.MembershipRecord) error
	AddContact(ctx context.Context, rec *backend.MembershipRecord) error
}

type constructor func(b Backend, deps forms.Deps) *forms.Form

var constructors = map[string]constructor{
	startupapply.FormID:      func(b Backend, d forms.Deps) *forms.Form { return startupapply.New(b, d) },
	volunteerapply.FormID:    func(b Backend, d forms.Deps) *forms.Form { return volunteerapply.New(b, d) },
	eventregistration.FormID: func(b Backend, d forms.Deps) *forms.Form { return eventregistration.New(b, d) },
	membership.FormID:        func(b Backend, d forms.Deps) *forms.Form { return membership.New(b, d) },
	contact.FormID:           func(b Backend, d forms.Deps) *forms.Form { return contact.New(b, d) },
}

// IDs lists every built-in form id.
func IDs() []string {
	return []string{
		contact.FormID,
		eventregistration.FormID,
		membership.FormID,
		startupapply.FormID,
		volunteerapply.FormID,
	}
}

// Registry builds every enabled form. Disabled forms are left out and answer 404.
func Registry(cfg *config.Config, b Backend, log logger.Logger, hooks ...submission.Hook) (*forms.Registry, error) {
	reg, err := forms.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, id := range IDs() {
		if !config.IsFormEnabled(cfg, id) {
			log.Info("form disabled", map[string]interface{}{"form": id})
			continue
		}
		f := constructors[id](b, forms.Deps{
			Config: config.GetFormConfig(cfg, id),
			Logger: log.Named(id),
			Hooks:  hooks,
		})
		if err := reg.Register(f); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
