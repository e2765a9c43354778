package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armanmujtaba/Trivanza/models"
	"github.com/armanmujtaba/Trivanza/prompts"
	"github.com/armanmujtaba/Trivanza/services"
	"github.com/armanmujtaba/Trivanza/sessions"
	"github.com/armanmujtaba/Trivanza/tripform"
	"github.com/armanmujtaba/Trivanza/workflows"
)

const plan = "## Day 1 - Fri 01 Aug 2025\n🏨 Hotel: INR 6,000\n\nGrand total: INR 6,000\n\nShall I adjust anything?"

type stubGateway struct {
	calls int
}

func (s *stubGateway) Complete(context.Context, string, []models.Turn, models.Turn, services.Options) models.GatewayResult {
	s.calls++
	return models.Success(plan)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) (*gin.Engine, *stubGateway) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assembler, err := prompts.NewAssembler(prompts.ClassicFamily, prompts.DefaultTiers, prompts.DefaultRegions)
	require.NoError(t, err)

	gw := &stubGateway{}
	wf := workflows.NewChatWorkflows(gw, assembler, tripform.NewValidator(), services.Options{Model: "m"}, workflows.WithLogger(logger))
	store := sessions.NewStore(time.Minute, logger)
	return NewRouter(NewChatHandler(store, wf, logger)), gw
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router http.Handler) models.SessionSnapshot {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var snap models.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func tripForm() models.TripFormRequest {
	return models.TripFormRequest{
		Origin:       "Mumbai",
		Destination:  "Hanoi",
		StartDate:    "2025-08-01",
		EndDate:      "2025-08-03",
		Budget:       "60000",
		CurrencyCode: "INR",
		BudgetTier:   "budget",
	}
}

func TestCreateAndGetSession(t *testing.T) {
	router, _ := newServer(t)
	snap := createSession(t, router)
	assert.NotEqual(t, uuid.Nil, snap.ID)
	assert.Equal(t, models.PhaseIdle, snap.Phase)

	w := do(t, router, http.MethodGet, "/api/sessions/"+snap.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, snap.ID, got.ID)
	assert.Empty(t, got.Turns)
}

func TestSessionLookupErrors(t *testing.T) {
	router, _ := newServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "malformed id", method: http.MethodGet, path: "/api/sessions/not-a-uuid", want: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodGet, path: "/api/sessions/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "unknown messages", method: http.MethodGet, path: "/api/sessions/" + uuid.NewString() + "/messages", want: http.StatusNotFound},
		{name: "unknown delete", method: http.MethodDelete, path: "/api/sessions/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "unknown calendar", method: http.MethodGet, path: "/api/sessions/" + uuid.NewString() + "/trip.ics", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSendMessage(t *testing.T) {
	router, gw := newServer(t)
	snap := createSession(t, router)
	path := "/api/sessions/" + snap.ID.String() + "/messages"

	w := do(t, router, http.MethodPost, path, models.SendMessageRequest{Content: "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RouteGreeting, resp.Route)
	assert.Equal(t, models.PhaseAwaitingForm, resp.Phase)
	require.NotNil(t, resp.AssistantMessage)
	assert.Equal(t, 0, gw.calls)

	w = do(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var turns []models.Turn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turns))
	assert.Len(t, turns, 2)
}

func TestSendMessage_BadBodies(t *testing.T) {
	router, _ := newServer(t)
	snap := createSession(t, router)
	path := "/api/sessions/" + snap.ID.String() + "/messages"

	tests := []struct {
		name string
		body any
	}{
		{name: "not json", body: "{"},
		{name: "missing content", body: map[string]string{}},
		{name: "blank content", body: models.SendMessageRequest{Content: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSubmitTripAndCalendar(t *testing.T) {
	router, gw := newServer(t)
	snap := createSession(t, router)
	base := "/api/sessions/" + snap.ID.String()

	w := do(t, router, http.MethodGet, base+"/trip.ics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no trip planned yet")

	w = do(t, router, http.MethodPost, base+"/trip", tripForm())
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RouteTripForm, resp.Route)
	assert.Equal(t, models.PhaseReady, resp.Phase)
	require.NotNil(t, resp.AssistantMessage)
	assert.Equal(t, plan, resp.AssistantMessage.Text)
	assert.Equal(t, 1, gw.calls)

	w = do(t, router, http.MethodGet, base+"/trip.ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "Day 3 in Hanoi")
}

func TestSubmitTrip_ValidationErrors(t *testing.T) {
	router, gw := newServer(t)
	snap := createSession(t, router)

	form := tripForm()
	form.Origin = ""
	form.Destination = ""
	form.StartDate = "August first"

	w := do(t, router, http.MethodPost, "/api/sessions/"+snap.ID.String()+"/trip", form)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Errors []tripform.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 3)
	assert.Equal(t, 0, gw.calls)
}

func TestDeleteSession(t *testing.T) {
	router, _ := newServer(t)
	snap := createSession(t, router)
	path := "/api/sessions/" + snap.ID.String()

	w := do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSAndHealth(t *testing.T) {
	router, _ := newServer(t)

	w := do(t, router, http.MethodOptions, "/api/sessions", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
