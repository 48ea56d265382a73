package handler

import (
	"net/http"

	"github.com/lobbysight/lobbysight/internal/api/response"
	"github.com/lobbysight/lobbysight/internal/roster"
)

// RosterHandler exposes the manual roster controls that the original
// keybinds cover: full reset and flagging the tracked state as stale
type RosterHandler struct {
	tracker *roster.Tracker
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(tracker *roster.Tracker) *RosterHandler {
	return &RosterHandler{tracker: tracker}
}

// Reset handles POST /api/roster/reset
func (h *RosterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	response.NoContent(w)
}

// MarkOutOfSync handles POST /api/roster/out-of-sync
func (h *RosterHandler) MarkOutOfSync(w http.ResponseWriter, r *http.Request) {
	h.tracker.MarkOutOfSync()
	response.NoContent(w)
}
