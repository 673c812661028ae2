package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/psdplots/plot-catalog-service/internal/domain"
)

// Catalog is the query surface served under /api.
type Catalog interface {
	ListNetworks(ctx context.Context) ([]domain.NetworkCard, error)
	ResolveThumbnail(ctx context.Context, segments ...string) (domain.ThumbnailChoice, bool, error)
	ListStations(ctx context.Context, network string) (domain.StationGroups, error)
	ListChannels(ctx context.Context, network, station string) (domain.ChannelGroups, error)
	ListPlots(ctx context.Context, network, station, channel string) (domain.ChannelPlots, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
	StationCoordinates() []domain.MapStation
}

type apiHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

type thumbnailResponse struct {
	Node      string                  `json:"node"`
	Thumbnail *domain.ThumbnailChoice `json:"thumbnail"`
}

func (h *apiHandler) listNetworks(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.ListNetworks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *apiHandler) listStations(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ListStations(r.Context(), r.PathValue("network"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *apiHandler) listChannels(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ListChannels(r.Context(), r.PathValue("network"), r.PathValue("station"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *apiHandler) listPlots(w http.ResponseWriter, r *http.Request) {
	plots, err := h.catalog.ListPlots(r.Context(), r.PathValue("network"), r.PathValue("station"), r.PathValue("channel"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plots)
}

// thumbnail resolves ?path=NET[/STA[/CHA]].
func (h *apiHandler) thumbnail(w http.ResponseWriter, r *http.Request) {
	node := strings.Trim(r.URL.Query().Get("path"), "/")
	if node == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	choice, ok, err := h.catalog.ResolveThumbnail(r.Context(), strings.Split(node, "/")...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := thumbnailResponse{Node: node}
	if ok {
		resp.Thumbnail = &choice
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *apiHandler) search(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *apiHandler) stationMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.StationCoordinates())
}

func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrOutsideArchive):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid archive path"})
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
