package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shiritori/internal/app"
	"shiritori/internal/config"
	"shiritori/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.MatchHub) {
	t.Helper()

	hub := app.NewMatchHub(app.NewBuiltinWordSource(nil), zap.NewNop(), app.SessionOptions{})
	t.Cleanup(hub.Close)

	handlers := NewHandlers(hub, zap.NewNop())
	server := NewServer(config.ServerConfig{}, handlers, http.NotFoundHandler(), zap.NewNop())

	ts := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func decodeResponse(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	defer resp.Body.Close()

	var body apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func createMatch(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	req := app.CreateMatchRequest{
		Participants: []app.ParticipantSpec{
			{Name: "Hana"},
			{Name: "Yuki"},
		},
		TimeLimitSeconds: 30,
	}
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/matches", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeResponse(t, resp)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	code := data["matchCode"].(string)
	require.Len(t, code, 6)
	return code
}

func TestCreateAndGetMatch(t *testing.T) {
	ts, _ := newTestServer(t)
	code := createMatch(t, ts)

	resp, err := http.Get(ts.URL + "/api/matches/" + code)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp)
	assert.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, code, data["matchCode"])

	state := data["state"].(map[string]interface{})
	assert.Equal(t, string(domain.PhaseIdle), state["phase"])
}

func TestGetMatchNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/matches/NOPE42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeResponse(t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, "MATCH_NOT_FOUND", body.Error.Code)
}

func TestCreateMatchRejectsInvalid(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/matches", "application/json",
		bytes.NewReader([]byte(`{"participants":[]}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeResponse(t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, "INVALID_MATCH", body.Error.Code)
}

func TestSnapshotAndRestore(t *testing.T) {
	ts, hub := newTestServer(t)
	code := createMatch(t, ts)

	session, ok := hub.GetSession(code)
	require.True(t, ok)
	require.NoError(t, session.Start())

	resp, err := http.Get(ts.URL + "/api/matches/" + code + "/snapshot")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp)
	require.True(t, body.Success)

	snapJSON, err := json.Marshal(body.Data)
	require.NoError(t, err)

	resp, err = http.Post(ts.URL+"/api/matches/restore", "application/json", bytes.NewReader(snapJSON))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	restored := decodeResponse(t, resp)
	require.True(t, restored.Success)

	data := restored.Data.(map[string]interface{})
	assert.NotEqual(t, code, data["matchCode"])
}

func TestRestoreRejectsCorrupt(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/matches/restore", "application/json",
		bytes.NewReader([]byte(`{"phase":"WAITING"}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeResponse(t, resp)
	assert.Equal(t, "RESTORE_FAILED", body.Error.Code)
}

func TestHealthAndStats(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	createMatch(t, ts)

	resp, err = http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	body := decodeResponse(t, resp)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["activeMatches"])
}
