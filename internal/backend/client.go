package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"hub47-site/internal/common/cache"
	apperrors "hub47-site/internal/common/errors"
	apphttp "hub47-site/internal/common/http"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/metrics"
)

const (
	pathAddStartup    = "Hub47/addStartup"
	pathAddVolunteer  = "Hub47/addvolunteer"
	pathManageFile    = "General/ManageFile"
	pathAddEvent      = "Hub47/addEvent"
	pathEventList     = "Hub47/getEventDetailsList"
	pathAddMembership = "Hub47/addMemberShip"
	pathAddContact    = "Hub47/addContact"

	ackAdded = "Added"

	eventsCacheKey = "events:list"
)

// rejection is a backend answer we cannot accept; it matches apperrors.ErrBackendRejected.
type rejection string

func (r rejection) Error() string { return string(r) }

func (r rejection) Unwrap() error { return apperrors.ErrBackendRejected }

var (
	ErrUnexpectedStatus error = rejection("UNEXPECTED_STATUS")
	ErrNotAcknowledged  error = rejection("NOT_ACKNOWLEDGED")
	ErrMissingID        error = rejection("MISSING_ID")
)

// unavailable marks a transport failure: the backend never answered.
func unavailable(operation string, err error) error {
	return fmt.Errorf("%s: %w: %w", operation, apperrors.ErrBackendUnavailable, err)
}

// StatusError carries the backend's non-2xx answer.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Operation, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

type Options struct {
	BaseURL   string
	HTTP      *apphttp.Client
	Cache     cache.Store
	EventsTTL time.Duration
	Logger    logger.Logger
}

// Client talks to the HUB47 REST backend.
type Client struct {
	baseURL   string
	http      *apphttp.Client
	cache     cache.Store
	eventsTTL time.Duration
	logger    logger.Logger
}

func NewClient(opts Options) *Client {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.HTTP == nil {
		opts.HTTP = apphttp.NewClient(30*time.Second, "hub47-site")
	}
	if opts.EventsTTL == 0 {
		opts.EventsTTL = 5 * time.Minute
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      opts.HTTP,
		cache:     opts.Cache,
		eventsTTL: opts.EventsTTL,
		logger:    opts.Logger.WithFields(map[string]interface{}{"component": "backend"}),
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + path
}

func (c *Client) postJSON(ctx context.Context, operation, path string, payload interface{}) (*apphttp.Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Execute(ctx, operation, req)
	if err != nil {
		return nil, unavailable(operation, err)
	}
	if !resp.OK() {
		return nil, &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: truncate(string(resp.Body))}
	}
	return resp, nil
}

// AddStartupApplication creates the application record and returns its id.
func (c *Client) AddStartupApplication(ctx context.Context, app *StartupApplication) (string, error) {
	resp, err := c.postJSON(ctx, "add_startup", pathAddStartup, app)
	if err != nil {
		return "", err
	}
	return parseID("add_startup", resp.Body)
}

// AddVolunteer creates the volunteer record and returns the id used to tag uploads.
func (c *Client) AddVolunteer(ctx context.Context, rec *VolunteerRecord) (string, error) {
	resp, err := c.postJSON(ctx, "add_volunteer", pathAddVolunteer, rec)
	if err != nil {
		return "", err
	}
	return parseID("add_volunteer", resp.Body)
}

// UploadFile posts one file as multipart form data keyed by the owning record's id.
func (c *Client) UploadFile(ctx context.Context, up Upload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("Id", up.EntityID); err != nil {
		return fmt.Errorf("failed to write Id: %w", err)
	}
	if err := mw.WriteField("FileType", up.FileType); err != nil {
		return fmt.Errorf("failed to write FileType: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.FileName))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}

	if up.Subtype != "" {
		if err := mw.WriteField("fileSubtype", up.Subtype); err != nil {
			return fmt.Errorf("failed to write fileSubtype: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(pathManageFile), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Execute(ctx, "upload_file", req)
	if err != nil {
		return unavailable("upload_file", err)
	}
	if !resp.OK() {
		return &StatusError{Operation: "upload_file", StatusCode: resp.StatusCode, Body: truncate(string(resp.Body))}
	}
	return nil
}

// AddEventRegistration succeeds only when the backend answers "Added".
func (c *Client) AddEventRegistration(ctx context.Context, reg *EventRegistration) error {
	resp, err := c.postJSON(ctx, "add_event_registration", pathAddEvent, reg)
	if err != nil {
		return err
	}
	return expectAdded("add_event_registration", resp.Body)
}

func (c *Client) AddMembership(ctx context.Context, rec *MembershipRecord) error {
	resp, err := c.postJSON(ctx, "add_membership", pathAddMembership, rec)
	if err != nil {
		return err
	}
	return expectAdded("add_membership", resp.Body)
}

// AddContact succeeds on any 2xx answer.
func (c *Client) AddContact(ctx context.Context, rec *MembershipRecord) error {
	_, err := c.postJSON(ctx, "add_contact", pathAddContact, rec)
	return err
}

// GetEventDetailsList reads through the cache; a cache failure never fails the call.
func (c *Client) GetEventDetailsList(ctx context.Context) ([]EventDetail, error) {
	var cached []EventDetail
	found, err := c.cache.GetJSON(ctx, eventsCacheKey, &cached)
	if err != nil {
		c.logger.Warn("events cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if found {
		metrics.CacheLookups.WithLabelValues("events", "hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("events", "miss").Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(pathEventList), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Execute(ctx, "get_event_list", req)
	if err != nil {
		return nil, unavailable("get_event_list", err)
	}
	if !resp.OK() {
		return nil, &StatusError{Operation: "get_event_list", StatusCode: resp.StatusCode, Body: truncate(string(resp.Body))}
	}

	var events []EventDetail
	if err := json.Unmarshal(resp.Body, &events); err != nil {
		return nil, fmt.Errorf("%w: failed to decode event list: %w", apperrors.ErrBackendRejected, err)
	}

	if err := c.cache.SetJSON(ctx, eventsCacheKey, events, c.eventsTTL); err != nil {
		c.logger.Warn("events cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return events, nil
}

// parseID accepts {"Id": 42}, {"id": "42"} or a bare number.
func parseID(operation string, body []byte) (string, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"Id", "ID", "id"} {
			if id := idString(obj[key]); id != "" {
				return id, nil
			}
		}
		return "", fmt.Errorf("%w: %s response has no Id", ErrMissingID, operation)
	}

	var n json.Number
	if err := json.Unmarshal(body, &n); err == nil && n.String() != "" && n.String() != "0" {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: %s response %q", ErrMissingID, operation, truncate(string(body)))
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case float64:
		if id == 0 {
			return ""
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case string:
		if id == "0" {
			return ""
		}
		return id
	default:
		return ""
	}
}

// expectAdded accepts the JSON string "Added" or the same as bare text.
func expectAdded(operation string, body []byte) error {
	text := strings.TrimSpace(string(body))
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		text = s
	}
	if text != ackAdded {
		return fmt.Errorf("%w: %s answered %q", ErrNotAcknowledged, operation, truncate(text))
	}
	return nil
}

func truncate(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
