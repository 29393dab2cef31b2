// Package notify tells HUB47 staff about accepted submissions by email (SES)
// and as an event on an SNS topic.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	awsclients "hub47-site/internal/common/aws"
	"hub47-site/internal/common/config"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/submission"
)

const defaultTimeout = 10 * time.Second

type EmailSender interface {
	SendText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topicARN, subject, message string, attrs map[string]string) (string, error)
}

type Options struct {
	Email    EmailSender
	From     string
	To       []string
	Events   EventPublisher
	TopicARN string
	Timeout  time.Duration
	Logger   logger.Logger
}

// Notifier sends in the background so a slow mail server never holds up the
// visitor's submit call. Wait blocks until pending sends finish.
type Notifier struct {
	opts   Options
	logger logger.Logger
	wg     sync.WaitGroup
}

func New(opts Options) *Notifier {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	return &Notifier{
		opts:   opts,
		logger: opts.Logger.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// FromConfig builds AWS clients for whichever channels are enabled. With
// both disabled it returns nil and the caller skips the hook.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Notifier, error) {
	n := cfg.Notifications
	if !n.Email.Enabled && !n.Events.Enabled {
		return nil, nil
	}

	opts := Options{Logger: log}
	if n.Email.Enabled {
		client, err := awsclients.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		opts.Email = client
		opts.From = n.Email.FromEmail
		opts.To = n.Email.ToEmails
	}
	if n.Events.Enabled {
		client, err := awsclients.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		opts.Events = client
		opts.TopicARN = n.Events.TopicARN
	}
	return New(opts), nil
}

// Hook reports successful outcomes. Failures are logged, never surfaced.
func (n *Notifier) Hook() submission.Hook {
	return func(ctx context.Context, o submission.Outcome) {
		if o.Err != nil {
			return
		}
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := n.Notify(ctx, o); err != nil {
				n.logger.Error("submission notification failed", map[string]interface{}{
					"form":  o.Form,
					"error": apperrors.Normalize(err).Details,
				})
			}
		}()
	}
}

func (n *Notifier) Wait() { n.wg.Wait() }

// Notify sends on every configured channel; one channel failing does not skip the other.
func (n *Notifier) Notify(ctx context.Context, o submission.Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	data := templateData(o)
	subject := renderTemplate(subjectTemplate, data)
	var errs []error

	if n.opts.Email != nil && len(n.opts.To) > 0 {
		body := renderTemplate(bodyTemplate, data) + "\n\n" + formatValues(o)
		messageID, err := n.opts.Email.SendText(ctx, n.opts.From, n.opts.To, subject, body)
		if err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		} else {
			n.logger.Info("submission email sent", map[string]interface{}{
				"form":      o.Form,
				"messageId": messageID,
			})
		}
	}

	if n.opts.Events != nil && n.opts.TopicARN != "" {
		attrs := map[string]string{
			"form":    o.Form,
			"eventId": uuid.New().String(),
		}
		messageID, err := n.opts.Events.PublishEvent(ctx, n.opts.TopicARN, subject, eventMessage(o), attrs)
		if err != nil {
			errs = append(errs, fmt.Errorf("event: %w", err))
		} else {
			n.logger.Info("submission event published", map[string]interface{}{
				"form":      o.Form,
				"messageId": messageID,
			})
		}
	}

	if len(errs) > 0 {
		return apperrors.NewNotificationSendFailedError("submission", errors.Join(errs...))
	}
	return nil
}

const (
	subjectTemplate = "New {{form}} submission"
	bodyTemplate    = "A new {{form}} submission was received at {{submittedAt}}.\nRecord: {{entityId}}\nAttachments: {{attachments}}"
)

// submissionEvent is the SNS message body.
type submissionEvent struct {
	Form        string `json:"form"`
	EntityID    string `json:"entityId"`
	SubmittedAt string `json:"submittedAt"`
	Attachments string `json:"attachments"`
}

func eventMessage(o submission.Outcome) string {
	ev := submissionEvent{Form: o.Form}
	if o.Receipt != nil {
		ev.EntityID = o.Receipt.EntityID
		ev.SubmittedAt = o.Receipt.SubmittedAt.UTC().Format(time.RFC3339)
		ev.Attachments = strings.Join(o.Receipt.Uploaded, ",")
	}
	// a struct of strings always marshals
	data, _ := json.Marshal(ev)
	return string(data)
}

func templateData(o submission.Outcome) map[string]interface{} {
	data := map[string]interface{}{"form": o.Form}
	if o.Receipt != nil {
		data["entityId"] = o.Receipt.EntityID
		data["submittedAt"] = o.Receipt.SubmittedAt.UTC().Format(time.RFC3339)
		data["attachments"] = strings.Join(o.Receipt.Uploaded, ",")
	}
	return data
}

// renderTemplate fills {{key}} placeholders; unknown keys render empty.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}

func formatValues(o submission.Outcome) string {
	keys := make([]string, 0, len(o.Values))
	for k := range o.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := o.Values[k]
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %v\n", k, v)
	}
	return strings.TrimRight(b.String(), "\n")
}
