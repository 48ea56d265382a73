package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobbysight/lobbysight/internal/api/response"
	"github.com/lobbysight/lobbysight/internal/services/denick"
)

// ResolveHandler resolves a single name through the denick path on demand
type ResolveHandler struct {
	denick *denick.Service
}

// NewResolveHandler creates a new resolve handler
func NewResolveHandler(denickService *denick.Service) *ResolveHandler {
	return &ResolveHandler{denick: denickService}
}

// Resolution is the response for a resolve request
type Resolution struct {
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
	UUID     string `json:"uuid,omitempty"`
	Username string `json:"username,omitempty"`
}

// Get handles GET /api/resolve/{name}
func (h *ResolveHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	id, ok := h.denick.Resolve(r.Context(), name)
	res := Resolution{Name: name, Resolved: ok}
	if ok {
		res.UUID = string(id.UUID)
		res.Username = id.Username
	}
	response.JSON(w, http.StatusOK, res)
}
