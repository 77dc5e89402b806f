package api

import (
	"context"
	"net/http"

	"github.com/rushteam/coursekit/analytics"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/service"
)

// Recommender 是 HTTP 层依赖的查询能力，由 *service.Service 实现。
type Recommender interface {
	Recommend(ctx context.Context, title string, k int, opts ...service.QueryOption) (*service.Response, error)
	Search(ctx context.Context, term string, limit int, opts ...service.QueryOption) (*service.Response, error)
	Analytics(ctx context.Context) (*analytics.Report, error)
	TopQueries(ctx context.Context, n int) ([]service.QueryCount, error)
	Reload(ctx context.Context) (uint64, error)
	Version() uint64
}

var _ Recommender = (*service.Service)(nil)

// Handler 持有全部 HTTP 处理函数。
type Handler struct {
	svc Recommender
}

func NewHandler(svc Recommender) *Handler {
	return &Handler{svc: svc}
}

// Recommendations GET /api/v1/recommendations?title=&k=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	k, err := getIntParam(r, "k", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	req := RecommendRequest{Title: r.URL.Query().Get("title"), K: k}
	if err := validateRequest(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	resp, err := h.svc.Recommend(r.Context(), req.Title, req.K, service.WithParams(queryParams(r)))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, resp, resp.Version)
}

// Search GET /api/v1/search?q=&limit=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	req := SearchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if err := validateRequest(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	resp, err := h.svc.Search(r.Context(), req.Query, req.Limit, service.WithParams(queryParams(r)))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, resp, resp.Version)
}

// Analytics GET /api/v1/analytics
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Analytics(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, rep, h.svc.Version())
}

// TopQueries GET /api/v1/queries/top?n=
func (h *Handler) TopQueries(w http.ResponseWriter, r *http.Request) {
	n, err := getIntParam(r, "n", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	req := TopQueriesRequest{N: n}
	if err := validateRequest(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	top, err := h.svc.TopQueries(r.Context(), req.N)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, top, h.svc.Version())
}

// Reload POST /api/v1/admin/reload
// 失败时旧快照继续服务，返回错误但不影响查询。
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	version, err := h.svc.Reload(r.Context())
	if err != nil {
		if core.IsDomainError(err) {
			respondDomainError(w, err)
			return
		}
		respondError(w, http.StatusInternalServerError, "RELOAD_FAILED", err.Error(), err)
		return
	}
	respondData(w, map[string]uint64{"version": version}, version)
}

// Healthz GET /healthz，快照未就绪时返回 503。
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	version := h.svc.Version()
	if version == 0 {
		respondError(w, http.StatusServiceUnavailable, core.ErrorCodeUnavailable, "no snapshot loaded", nil)
		return
	}
	respondData(w, map[string]any{"status": "ok", "version": version}, version)
}
