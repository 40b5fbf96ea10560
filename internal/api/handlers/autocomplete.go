package handlers

import (
	"context"
	"net/http"
	"strings"
	"triptracks-service/internal/api/dto"
	"triptracks-service/internal/domain"
)

const maxQueryLen = 200

type PlaceSearcher interface {
	Autocomplete(ctx context.Context, query string) []domain.Location
}

type PlaceHandler struct {
	Searcher PlaceSearcher
}

// Autocomplete returns up to five places for the query text.
func (h *PlaceHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > maxQueryLen {
		writeError(w, r, http.StatusBadRequest, "query is too long")
		return
	}

	places := h.Searcher.Autocomplete(r.Context(), query)
	writeJSON(w, r, http.StatusOK, dto.NewPlaceResponses(places))
}
