package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hub47-site/internal/common/cache"
	apperrors "hub47-site/internal/common/errors"
	apphttp "hub47-site/internal/common/http"
	"hub47-site/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

func newTestClient(t *testing.T, handler http.HandlerFunc, store cache.Store) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Options{
		BaseURL:   srv.URL + "/api/",
		HTTP:      apphttp.NewClientWith(srv.Client(), "hub47-site-test"),
		Cache:     store,
		EventsTTL: 5 * time.Minute,
		Logger:    logger.NewTestLogger(t),
	})
}

func sampleEvents() []EventDetail {
	return []EventDetail{
		{ID: 1, Title: "What Is Ideal Customer Profile (ICP)?", Category: "Workshop", StartDate: "04 Jan 2026", Mode: "Online", Cost: "Free"},
		{ID: 2, Title: "Startup Pitch Night - UAE Edition", Category: "Networking", StartDate: "18 Jan 2026", Mode: "In-Person", Cost: "Free"},
	}
}

// ==========================
// Create Call Tests
// ==========================

func TestClient_AddVolunteer(t *testing.T) {
	var got VolunteerRecord
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/Hub47/addvolunteer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "hub47-site-test", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"Id": 42, "Message": "Saved"}`))
	}, nil)

	id, err := c.AddVolunteer(context.Background(), &VolunteerRecord{Status: "Pending", Name: "Sara"})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, "Sara", got.Name)
	assert.Equal(t, "Pending", got.Status)
}

func TestClient_AddVolunteer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "boom", ErrUnexpectedStatus},
		{"missing id", http.StatusOK, `{"Message":"ok"}`, ErrMissingID},
		{"zero id", http.StatusOK, `{"Id":0}`, ErrMissingID},
		{"not json", http.StatusOK, `Added`, ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			_, err := c.AddVolunteer(context.Background(), &VolunteerRecord{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_AddStartupApplication_BareNumber(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Hub47/addStartup", r.URL.Path)
		_, _ = w.Write([]byte(`1337`))
	}, nil)

	id, err := c.AddStartupApplication(context.Background(), &StartupApplication{StartupName: "Falcon"})
	require.NoError(t, err)
	assert.Equal(t, "1337", id)
}

func TestClient_AddEventRegistration(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"json string ack", `"Added"`, false},
		{"plain text ack", `Added`, false},
		{"other answer", `"Already registered"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/Hub47/addEvent", r.URL.Path)
				var reg EventRegistration
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
				assert.Equal(t, 7, reg.EventID)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			err := c.AddEventRegistration(context.Background(), &EventRegistration{EventID: 7, Name: "Omar"})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotAcknowledged)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClient_AddMembership(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Hub47/addMemberShip", r.URL.Path)
		_, _ = w.Write([]byte(`"Added"`))
	}, nil)

	assert.NoError(t, c.AddMembership(context.Background(), &MembershipRecord{Membership: "premium", Status: true}))
}

func TestClient_AddContact(t *testing.T) {
	var got MembershipRecord
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Hub47/addContact", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}, nil)

	require.NoError(t, c.AddContact(context.Background(), &MembershipRecord{Membership: "Contact Us", Notes: "Hello"}))
	assert.Equal(t, "Contact Us", got.Membership)

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, nil)
	err := failing.AddContact(context.Background(), &MembershipRecord{})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

// ==========================
// Upload Tests
// ==========================

func TestClient_UploadFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/General/ManageFile", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "42", r.FormValue("Id"))
		assert.Equal(t, "volunteer", r.FormValue("FileType"))
		assert.Equal(t, "profileimage", r.FormValue("fileSubtype"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)
	}, nil)

	err := c.UploadFile(context.Background(), Upload{
		EntityID:    "42",
		FileType:    "volunteer",
		Subtype:     "profileimage",
		FileName:    "me.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	assert.NoError(t, err)
}

func TestClient_UploadFile_NoSubtype(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["fileSubtype"]
		assert.False(t, present)
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	err := c.UploadFile(context.Background(), Upload{EntityID: "1", FileType: "startup", FileName: "deck.pdf", Data: []byte("%PDF")})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_ErrorsCarryBackendCode(t *testing.T) {
	refusing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)
	err := refusing.AddContact(context.Background(), &MembershipRecord{})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.ErrorIs(t, err, apperrors.ErrBackendRejected)

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	down := NewClient(Options{BaseURL: srv.URL, HTTP: apphttp.NewClient(time.Second, "hub47-site-test")})
	err = down.AddContact(context.Background(), &MembershipRecord{})
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	assert.Equal(t, apperrors.ErrCodeBackendUnavailable, apperrors.BackendCode(err))

	assert.ErrorIs(t, ErrNotAcknowledged, apperrors.ErrBackendRejected)
}

// ==========================
// Event List Cache Tests
// ==========================

func TestClient_GetEventDetailsList_CacheMiss(t *testing.T) {
	events := sampleEvents()
	payload, err := json.Marshal(events)
	require.NoError(t, err)

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(eventsCacheKey).RedisNil()
	redisMock.ExpectSet(eventsCacheKey, string(payload), 5*time.Minute).SetVal("OK")

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/Hub47/getEventDetailsList", r.URL.Path)
		_, _ = w.Write(payload)
	}, cache.NewFromClient(redisClient))

	got, err := c.GetEventDetailsList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestClient_GetEventDetailsList_CacheHit(t *testing.T) {
	events := sampleEvents()
	payload, err := json.Marshal(events)
	require.NoError(t, err)

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(eventsCacheKey).SetVal(string(payload))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called on cache hit")
	}, cache.NewFromClient(redisClient))

	got, err := c.GetEventDetailsList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events, got)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestClient_GetEventDetailsList_CacheErrorFallsThrough(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(eventsCacheKey).SetErr(errors.New("connection reset"))
	redisMock.ExpectSet(eventsCacheKey, "[]", 5*time.Minute).SetErr(errors.New("connection reset"))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, cache.NewFromClient(redisClient))

	got, err := c.GetEventDetailsList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestClient_GetEventDetailsList_BackendDown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	_, err := c.GetEventDetailsList(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}
