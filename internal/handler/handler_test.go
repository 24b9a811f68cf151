package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishek017/GradPilot/internal/auth"
	"github.com/abhishek017/GradPilot/internal/graduate"
	"github.com/abhishek017/GradPilot/internal/photo"
	"github.com/abhishek017/GradPilot/internal/stage"
)

// memStore backs both the graduate service and the stage walk for
// router-level tests.
type memStore struct {
	records map[string]graduate.Graduate
}

func (s *memStore) FindByID(_ context.Context, id string) (graduate.Graduate, error) {
	g, ok := s.records[id]
	if !ok {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	return g, nil
}

func (s *memStore) Search(_ context.Context, q string) ([]graduate.Graduate, error) {
	if q == "" {
		return nil, nil
	}
	q = strings.ToLower(q)
	var out []graduate.Graduate
	for _, g := range s.records {
		hay := strings.ToLower(g.StudentID + " " + g.Name + " " + g.Email + " " + g.UniqueID + " " + g.SubmissionID)
		if strings.Contains(hay, q) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) List(context.Context, string, bool) ([]graduate.Graduate, error) {
	var out []graduate.Graduate
	for _, g := range s.records {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	return out, nil
}

func (s *memStore) Update(_ context.Context, id string, changes map[string]any) (graduate.Graduate, error) {
	g, ok := s.records[id]
	if !ok {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	if v, ok := changes["attended"].(bool); ok {
		g.Attended = v
	}
	if v, ok := changes["gown_collected"].(bool); ok {
		g.GownCollected = v
	}
	if v, ok := changes["seat_row"].(string); ok {
		g.SeatRow = v
	}
	s.records[id] = g
	return g, nil
}

func (s *memStore) StampCheckIn(_ context.Context, id, staffInitials string, at time.Time) (graduate.Graduate, error) {
	g, ok := s.records[id]
	if !ok {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	g.Attended = true
	if g.CheckInTime == nil {
		g.CheckInTime = &at
	}
	if staffInitials != "" {
		g.CheckedInBy = staffInitials
	}
	s.records[id] = g
	return g, nil
}

func (s *memStore) AggregateCounts(context.Context) (graduate.Counts, error) {
	return graduate.Counts{Total: len(s.records)}, nil
}

func (s *memStore) Eligible(context.Context) ([]graduate.Graduate, error) {
	var out []graduate.Graduate
	for _, g := range s.records {
		if g.Attended && g.GownCollected {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	return out, nil
}

type memPointer struct{ current string }

func (p *memPointer) Current(context.Context) (string, error) { return p.current, nil }
func (p *memPointer) SetCurrent(_ context.Context, id string) error {
	p.current = id
	return nil
}

const (
	testKey    = "test-signing-key"
	testIssuer = "gradpilot-test"
)

func newTestRouter(t *testing.T, store *memStore) (*gin.Engine, *memPointer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	photos, err := photo.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	grads := graduate.NewService(store, nil, 0, nil)
	ptr := &memPointer{}
	stageSvc := stage.NewService(store, ptr, nil)

	h := New(grads, stageSvc, photos, AuthConfig{
		Issuer:     testIssuer,
		SigningKey: testKey,
		AccessTTL:  time.Hour,
		RefreshTTL: 2 * time.Hour,
		StaffUser:  "staff",
		StaffPass:  "secret",
	}, nil)

	r := gin.New()
	r.POST("/v1/auth/login", h.Login)
	r.GET("/v1/stage/display", h.StageDisplay)
	staffOnly := r.Group("/v1", auth.StaffAuth(testKey, testIssuer))
	staffOnly.GET("/graduates/search", h.SearchGraduates)
	staffOnly.PUT("/graduates/:id/checkin", h.UpdateCheckIn)
	staffOnly.POST("/stage/show", h.StageShow)
	staffOnly.POST("/stage/next", h.StageNext)
	return r, ptr
}

func staffToken(t *testing.T) string {
	t.Helper()
	pair, err := auth.Issue("staff", testIssuer, testKey, time.Hour, time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthGate(t *testing.T) {
	store := &memStore{records: map[string]graduate.Graduate{
		"g1": {ID: "g1", UniqueID: "U1", Name: "Alice"},
	}}
	r, _ := newTestRouter(t, store)

	t.Run("mutating route rejects missing token before side effects", func(t *testing.T) {
		form := url.Values{"attended": {"on"}}
		req := httptest.NewRequest(http.MethodPut, "/v1/graduates/g1/checkin",
			strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, store.records["g1"].Attended)
	})

	t.Run("login issues a working token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"username": "staff", "password": "secret"})
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.AccessToken)

		req = httptest.NewRequest(http.MethodGet, "/v1/graduates/search?q=alice", nil)
		req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Alice")
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"username": "staff", "password": "nope"})
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCheckInAndStageFlow(t *testing.T) {
	store := &memStore{records: map[string]graduate.Graduate{
		"g1": {ID: "g1", UniqueID: "U1", Name: "Alice", DisplayName: "Alice"},
	}}
	r, ptr := newTestRouter(t, store)
	token := staffToken(t)

	do := func(method, path string, form url.Values) *httptest.ResponseRecorder {
		var req *http.Request
		if form != nil {
			req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Alice checks in.
	w := do(http.MethodPut, "/v1/graduates/g1/checkin", url.Values{
		"attended":       {"on"},
		"staff_initials": {"JB"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.records["g1"].CheckInTime)

	// Not yet eligible: gown not collected.
	w = do(http.MethodPost, "/v1/stage/show", url.Values{"grad_id": {"g1"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, ptr.current)

	// Gown desk marks the gown collected (direct store poke; the gown
	// screen is exercised in the graduate package tests).
	g := store.records["g1"]
	g.GownCollected = true
	store.records["g1"] = g

	// NEXT picks Alice up from idle.
	w = do(http.MethodPost, "/v1/stage/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "g1", ptr.current)

	// Public display shows her without auth.
	req := httptest.NewRequest(http.MethodGet, "/v1/stage/display", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"presenting":true`)
	assert.Contains(t, rec.Body.String(), "Alice")

	// Alice was last; NEXT clears the screen.
	w = do(http.MethodPost, "/v1/stage/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ptr.current)
}
