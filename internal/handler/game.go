package handler

import (
	"errors"
	"net/http"

	"busyisland/internal/game"
	"busyisland/internal/ridership"
	"busyisland/internal/session"
	"busyisland/internal/templates"
)

const (
	defaultSelection = "MRT"
	defaultPeriod    = string(ridership.Weekday)
)

// Game serves the game page for the caller's session.
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)

	data := templates.GameData{Page: h.page("Mini Game", "/game")}
	h.sessions.With(id, func(e *session.Entry) {
		data.Flash = e.TakeFlash()
		data.View = e.Session.View()
		data.Selection = orDefault(e.Selection, defaultSelection)
		data.Period = orDefault(e.Period, defaultPeriod)
	})

	h.render(w, r, "game", templates.GamePage(data))
}

// StartGame begins a new round for the posted line and period. Any round in
// progress is discarded.
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	sel, err := ridership.ParseSelection(r.FormValue("line"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	period, err := ridership.ParsePeriod(r.FormValue("period"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := h.sessionID(w, r)
	h.sessions.With(id, func(e *session.Entry) {
		err := e.Session.Start(r.Context(), sel, period)
		switch {
		case err == nil:
			e.Selection, e.Period = sel.String(), string(period)
			h.logger.Debug("round started", "selection", sel, "period", period)
		case errors.Is(err, game.ErrInsufficientPool):
			// The round was reset, so the form follows the new pick.
			e.Selection, e.Period = sel.String(), string(period)
			e.Flash = "There aren't enough stations on " + sel.Label() + " to play. Pick another line."
		case errors.Is(err, ridership.ErrDataLoad):
			// The previous round, if any, is still on screen.
			h.logger.Error("start round", "selection", sel, "period", period, "error", err)
			e.Flash = "Ridership data could not be loaded right now. Please try again."
		default:
			h.logger.Error("start round", "selection", sel, "period", period, "error", err)
			e.Flash = "Something went wrong starting the game."
		}
	})

	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

// Answer records the player's pick for the current question.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	side, err := game.ParseSide(r.FormValue("side"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := h.sessionID(w, r)
	h.sessions.With(id, func(e *session.Entry) {
		if _, err := e.Session.Answer(side); err != nil {
			h.logger.Debug("answer ignored", "error", err)
		}
	})

	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

// Next moves on to the next question, or ends the round after the last one.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	h.sessions.With(id, func(e *session.Entry) {
		done, err := e.Session.Next()
		if err != nil {
			h.logger.Debug("next ignored", "error", err)
			return
		}
		if done {
			h.logger.Debug("round complete")
		}
	})

	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

// Reset abandons the current round.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	h.sessions.With(id, func(e *session.Entry) {
		e.Session.Reset()
	})

	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
