package chi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/query"
	healthuc "github.com/roomcraft/reco/internal/usecase/health"
	"github.com/roomcraft/reco/internal/usecase/recommend"
)

// Self-check query bounds.
const (
	defaultSelfCheckK      = 5
	defaultSelfCheckSample = 50
	maxSelfCheckSample     = 500
)

// Catalog is the snapshot view the debug endpoints need.
type Catalog interface {
	Size() int
	Items() []domain.Item
	ItemByID(id string) (domain.Item, bool)
}

// FlagReader reads a single item's attribute flags.
type FlagReader interface {
	ItemFlags(ctx context.Context, id string) (map[string]bool, error)
}

// SwatchStats reports how many color descriptors were computed lazily.
type SwatchStats interface {
	Len() int
}

type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeNotFound          errorCode = "not_found"
	codeIndexUnavailable  errorCode = "index_unavailable"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeInternal          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the recommendation pipeline over HTTP.
type Server struct {
	recommender   *recommend.Service
	health        *healthuc.Service
	catalog       Catalog
	flags         FlagReader
	swatches      SwatchStats
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommender *recommend.Service,
	health *healthuc.Service,
	catalog Catalog,
	flags FlagReader,
	swatches SwatchStats,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommender: recommender,
		health:      health,
		catalog:     catalog,
		flags:       flags,
		swatches:    swatches,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
		sentinelHandler(domain.ErrCatalogEmpty, http.StatusServiceUnavailable, codeIndexUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/reco", func(r chirouter.Router) {
		r.Post("/recommend", s.Recommend)
		r.Route("/debug", func(r chirouter.Router) {
			r.Get("/health", s.DebugHealth)
			r.Get("/colors", s.DebugColors)
			r.Get("/item/{id}", s.DebugItem)
			r.Get("/selfcheck", s.SelfCheck)
		})
	})
}

// Recommend handles POST /reco/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid JSON")
		return
	}

	var image []byte
	if req.ImageB64 != "" {
		var err error
		image, err = decodeImageB64(req.ImageB64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "image_b64 is not valid base64")
			return
		}
	}

	q, err := query.New(query.Params{
		Text:        req.Text,
		Image:       image,
		K:           req.K,
		TypeFilter:  req.Type,
		Labels:      req.Additionals,
		Strict:      req.Strict,
		WeightImage: req.WImage,
		WeightText:  req.WText,
		ColorWeight: req.ColorWeight,
		ColorMode:   req.ColorMode,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := s.recommender.Recommend(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildRecommendResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"ok":     report.Status != healthuc.Unhealthy,
		"index":  report.IndexSize,
		"checks": report.Checks,
	})
}

// DebugHealth handles GET /reco/debug/health with catalog counts.
func (s *Server) DebugHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"ok":     report.Status != healthuc.Unhealthy,
		"count":  s.catalog.Size(),
		"index":  report.IndexSize,
		"checks": report.Checks,
	})
}

// DebugColors handles GET /reco/debug/colors: descriptor coverage.
func (s *Server) DebugColors(w http.ResponseWriter, _ *http.Request) {
	total := s.catalog.Size()
	withLab := 0
	for _, it := range s.catalog.Items() {
		if it.AvgLab != nil {
			withLab++
		}
	}
	computed := s.swatches.Len()

	denom := total
	if denom < 1 {
		denom = 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":        total,
		"with_avg_lab": withLab + computed,
		"precomputed":  withLab,
		"computed":     computed,
		"ratio":        float64(withLab+computed) / float64(denom),
	})
}

// DebugItem handles GET /reco/debug/item/{id}: flags plus snapshot state
// for one item. Missing flags are reported as an empty set, not a 404.
func (s *Server) DebugItem(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	flags, err := s.flags.ItemFlags(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrItemNotFound) {
			s.handleDomainError(w, err)
			return
		}
		flags = map[string]bool{}
	}

	payload := map[string]any{
		"id":      id,
		"flags":   flags,
		"avg_lab": nil,
		"image":   "",
	}
	if it, ok := s.catalog.ItemByID(id); ok {
		payload["avg_lab"] = it.AvgLab
		if candidates := it.ImageCandidates(); len(candidates) > 0 {
			payload["image"] = candidates[0]
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

// SelfCheck handles GET /reco/debug/selfcheck?k=5&n=50.
func (s *Server) SelfCheck(w http.ResponseWriter, r *http.Request) {
	k := queryInt(r, "k", defaultSelfCheckK)
	sample := queryInt(r, "n", defaultSelfCheckSample)
	if k <= 0 {
		k = defaultSelfCheckK
	}
	if sample <= 0 {
		sample = defaultSelfCheckSample
	}
	if sample > maxSelfCheckSample {
		sample = maxSelfCheckSample
	}

	check, err := s.recommender.RunSelfCheck(r.Context(), k, sample)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeImageB64 decodes a base64 image payload, tolerating the data-URL
// prefix some clients send.
func decodeImageB64(b64 string) ([]byte, error) {
	if i := strings.IndexByte(b64, ','); i >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+1:]
	}
	return base64.StdEncoding.DecodeString(b64)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrIndexUnavailable,
		domain.ErrCatalogEmpty,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
