package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobbysight/lobbysight/internal/api/request"
	"github.com/lobbysight/lobbysight/internal/api/response"
	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/storage"
)

// AliasHandler manages the curated alias table
type AliasHandler struct {
	storage storage.Storage
	denick  *denick.Service
	clock   clock.Clock
}

// NewAliasHandler creates a new alias handler
func NewAliasHandler(storage storage.Storage, denickService *denick.Service, clk clock.Clock) *AliasHandler {
	return &AliasHandler{
		storage: storage,
		denick:  denickService,
		clock:   clk,
	}
}

// List handles GET /api/aliases
func (h *AliasHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.storage.ListAliasEntries(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.AliasEntry, len(entries))
	for i, entry := range entries {
		out[i] = response.AliasEntryFromModel(entry)
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/aliases/{alias}
func (h *AliasHandler) Get(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]

	entry, err := h.storage.GetAliasEntry(r.Context(), alias)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AliasEntryFromModel(entry))
}

// Put handles PUT /api/aliases/{alias}
func (h *AliasHandler) Put(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]

	var req request.PutAliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	uuid, err := model.ParsePlayerUUID(req.UUID)
	if err != nil {
		WriteError(w, NewInvalidRequestError("uuid is not a valid player uuid"))
		return
	}

	entry := &model.AliasEntry{
		Alias:     alias,
		UUID:      uuid,
		Note:      req.Note,
		UpdatedAt: h.clock.Now(),
	}
	if err := h.storage.SaveAliasEntry(r.Context(), entry); err != nil {
		WriteError(w, err)
		return
	}

	// Drop any cached resolution so the new mapping shows on the next pass
	h.denick.Forget(alias)

	response.JSON(w, http.StatusOK, response.AliasEntryFromModel(entry))
}

// Delete handles DELETE /api/aliases/{alias}
func (h *AliasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]

	if err := h.storage.DeleteAliasEntry(r.Context(), alias); err != nil {
		WriteError(w, err)
		return
	}
	h.denick.Forget(alias)
	response.NoContent(w)
}
