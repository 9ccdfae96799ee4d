package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorc/internal/directory"
	"gorc/internal/dispatcher"
	"gorc/internal/logger"
)

type fakeConn struct {
	id string

	mu    sync.Mutex
	lines []string
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, string(p))
	return nil
}

func (f *fakeConn) Close() error { return nil }

func setupRouter(t *testing.T) (*gin.Engine, *directory.Directory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lg := logger.New("test")
	dir := directory.New(lg)
	disp := dispatcher.New(dir, lg)

	r := gin.New()
	NewRouter(dir, disp, lg).RegisterRoutes(r)
	return r, dir
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/hc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Running", w.Body.String())
}

func TestListRooms(t *testing.T) {
	router, dir := setupRouter(t)
	_, err := dir.Register("alice", &fakeConn{id: "c1"})
	require.NoError(t, err)
	require.NoError(t, dir.Join("alice", "#dnd"))

	w := get(t, router, "/rooms")

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Rooms []string `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"#dnd", "#lobby"}, body.Rooms)
}

func TestRoomUsers(t *testing.T) {
	router, dir := setupRouter(t)
	_, err := dir.Register("alice", &fakeConn{id: "c1"})
	require.NoError(t, err)
	require.NoError(t, dir.Join("alice", "#dnd"))

	w := get(t, router, "/rooms/dnd/users")

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Room  string   `json:"room"`
		Users []string `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "#dnd", body.Room)
	assert.Equal(t, []string{"alice"}, body.Users)
}

func TestRoomUsersUnknownRoom(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/rooms/nowhere/users")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsers(t *testing.T) {
	router, dir := setupRouter(t)
	_, err := dir.Register("alice", &fakeConn{id: "c1"})
	require.NoError(t, err)
	_, err = dir.Register("bob", &fakeConn{id: "c2"})
	require.NoError(t, err)

	w := get(t, router, "/users")

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Users []string `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"alice", "bob"}, body.Users)
}

func TestWebsocketRequiresName(t *testing.T) {
	router, _ := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/ws").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/ws?name=%23dnd").Code)
}
