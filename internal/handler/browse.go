package handler

import (
	"net/http"

	"busyisland/internal/ridership"
	"busyisland/internal/templates"
)

// Browse lists the busiest stations for a line or category on a given day.
// The period's dataset is imported into the store on first request.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	sel, err := ridership.ParseSelection(orDefault(r.URL.Query().Get("line"), defaultSelection))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := ridership.ParsePeriod(orDefault(r.URL.Query().Get("period"), defaultPeriod))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	data := templates.BrowseData{
		Page:      h.page("Browse", "/browse"),
		Selection: sel.String(),
		Label:     sel.Label(),
		Period:    string(period),
	}

	if err := h.importer.Ensure(ctx, period); err != nil {
		h.logger.Error("import ridership", "period", period, "error", err)
		data.Flash = "Ridership data could not be loaded right now. Please try again."
		h.render(w, r, "browse", templates.BrowsePage(data))
		return
	}

	lines := make([]string, 0, len(sel.Lines()))
	for _, l := range sel.Lines() {
		lines = append(lines, string(l))
	}
	rows, err := h.db.TopStations(ctx, string(period), lines, browseLimit)
	if err != nil {
		h.logger.Error("top stations", "selection", sel, "period", period, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	data.Rows = rows

	h.render(w, r, "browse", templates.BrowsePage(data))
}
