package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busyisland/internal/game"
	"busyisland/internal/session"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	sessions := session.NewStore(time.Hour, func() *game.Session { return game.NewSession(nil, nil) })
	static := fstest.MapFS{"style.css": {Data: []byte("body{}")}}
	return New(sessions, nil, nil, static, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestComputeAssetVersion(t *testing.T) {
	a := computeAssetVersion(fstest.MapFS{
		"style.css": {Data: []byte("body{}")},
		"logo.png":  {Data: []byte("png")},
	})
	assert.Len(t, a, 8)

	b := computeAssetVersion(fstest.MapFS{
		"style.css": {Data: []byte("body{}")},
		"logo.png":  {Data: []byte("other")},
	})
	assert.Equal(t, a, b, "only css and js count")

	c := computeAssetVersion(fstest.MapFS{"style.css": {Data: []byte("body{margin:0}")}})
	assert.NotEqual(t, a, c)
}

func TestSessionID(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	id := h.sessionID(rec, httptest.NewRequest("GET", "/game", nil))
	require.True(t, session.ValidID(id))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest("GET", "/game", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: id})
	rec = httptest.NewRecorder()
	assert.Equal(t, id, h.sessionID(rec, req))
	assert.Empty(t, rec.Result().Cookies(), "known visitors keep their cookie")

	req = httptest.NewRequest("GET", "/game", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})
	rec = httptest.NewRecorder()
	assert.NotEqual(t, "forged", h.sessionID(rec, req))
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler(t).Healthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestGame_IdlePage(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler(t).Game(rec, httptest.NewRequest("GET", "/game", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `<option value="MRT" selected>`)
}

func TestGameActions_RejectBadInput(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/game/answer", nil)
	req.Form = map[string][]string{"side": {"centre"}}
	h.Answer(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/game/start", nil)
	req.Form = map[string][]string{"line": {"CCL"}, "period": {"monday"}}
	h.StartGame(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameActions_IdleSessionRedirects(t *testing.T) {
	h := testHandler(t)
	for _, fn := range []http.HandlerFunc{h.Next, h.Reset} {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest("POST", "/game/next", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/game", rec.Header().Get("Location"))
	}
}
