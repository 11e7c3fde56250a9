package handler

import (
	"net/http"

	"busyisland/internal/templates"
)

// Home serves the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, "home", templates.HomePage(h.page("Home", "/")))
}
