package handler

import (
	"net/http"

	"github.com/lobbysight/lobbysight/internal/api/response"
	"github.com/lobbysight/lobbysight/internal/overlay"
)

// SnapshotHandler serves the latest overlay snapshot
type SnapshotHandler struct {
	state *overlay.State
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(state *overlay.State) *SnapshotHandler {
	return &SnapshotHandler{state: state}
}

// Get handles GET /api/snapshot
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot := h.state.ReadSnapshot()
	response.JSON(w, http.StatusOK, response.SnapshotFromModel(snapshot))
}
