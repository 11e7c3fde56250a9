package handler

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"

	"github.com/a-h/templ"

	"busyisland/internal/ridership"
	"busyisland/internal/session"
	"busyisland/internal/storage"
	"busyisland/internal/templates"
)

const (
	cookieName   = "busy_session"
	cookieMaxAge = 24 * 60 * 60 // seconds; the server forgets idle sessions sooner
	browseLimit  = 50
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	sessions *session.Store
	importer *ridership.Importer
	db       *storage.DB
	logger   *slog.Logger
	version  string // content hash of static assets, for cache busting
}

// New creates a Handler.
func New(sessions *session.Store, importer *ridership.Importer, db *storage.DB, static fs.FS, logger *slog.Logger) *Handler {
	v := computeAssetVersion(static)
	logger.Info("asset version computed", "version", v)
	return &Handler{
		sessions: sessions,
		importer: importer,
		db:       db,
		logger:   logger,
		version:  v,
	}
}

// computeAssetVersion hashes all CSS and JS files in the static filesystem
// to produce a short version string. Changes to any file produce a new version.
func computeAssetVersion(static fs.FS) string {
	h := md5.New()
	var paths []string
	fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext == ".css" || ext == ".js" {
			paths = append(paths, p)
		}
		return nil
	})
	sort.Strings(paths) // deterministic order
	for _, p := range paths {
		f, err := static.Open(p)
		if err != nil {
			continue
		}
		io.Copy(h, f)
		f.Close()
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}

// page creates a templates.Page with the asset version pre-filled.
func (h *Handler) page(title, currentPath string) templates.Page {
	return templates.Page{
		Title:        title,
		CurrentPath:  currentPath,
		AssetVersion: h.version,
	}
}

// sessionID returns the caller's session id, issuing a cookie for new visitors.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil && session.ValidID(c.Value) {
		return c.Value
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// render writes a component as HTML.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("rendering page", "page", name, "error", err)
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

// Loading tells the browser the datasets are still warming up and to retry.
func (h *Handler) Loading(w http.ResponseWriter, r *http.Request) {
	p := h.page("Loading", r.URL.Path)
	p.Refresh = 5
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Retry-After", "5")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := templates.LoadingPage(p).Render(r.Context(), w); err != nil {
		h.logger.Error("rendering page", "page", "loading", "error", err)
	}
}
