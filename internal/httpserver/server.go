package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/procurisk/triage/internal/auth"
	"github.com/procurisk/triage/internal/metrics"
	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
	"github.com/procurisk/triage/internal/triage"
)

// ResultPublisher streams finished results to downstream consumers.
type ResultPublisher interface {
	PublishResult(ctx context.Context, res *models.PipelineResult) error
}

// ResultArchiver retains finished results in object storage.
type ResultArchiver interface {
	ArchiveResult(ctx context.Context, res *models.PipelineResult) error
}

type Server struct {
	pipeline  *triage.Pipeline
	refs      store.ReferenceStore
	publisher ResultPublisher
	archiver  ResultArchiver
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	verifier  *auth.Verifier
	logger    *zap.Logger
}

type Option func(*Server)

func WithPublisher(p ResultPublisher) Option {
	return func(s *Server) { s.publisher = p }
}

func WithArchiver(a ResultArchiver) Option {
	return func(s *Server) { s.archiver = a }
}

func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithAuth(v *auth.Verifier) Option {
	return func(s *Server) { s.verifier = v }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(pipeline *triage.Pipeline, refs store.ReferenceStore, opts ...Option) *Server {
	s := &Server{
		pipeline: pipeline,
		refs:     refs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if s.verifier != nil {
			r.Use(s.verifier.Middleware)
		}
		r.Post("/events/process", s.handleProcess)
		r.Post("/events/batch", s.handleBatch)
	})

	return r
}

type eventRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Source          string `json:"source"`
	Severity        string `json:"severity"`
	EventTypeID     *int64 `json:"eventTypeId"`
	RegionID        *int64 `json:"regionId"`
	BusinessUnitID  *int64 `json:"businessUnitId"`
	SourceReference string `json:"sourceReference"`
	CreatedBy       int64  `json:"createdBy"`
}

func (req eventRequest) toEvent() models.Event {
	return models.Event{
		Title:           req.Title,
		Description:     req.Description,
		Source:          models.ParseSourceKind(req.Source),
		Severity:        req.Severity,
		EventTypeID:     req.EventTypeID,
		RegionID:        req.RegionID,
		BusinessUnitID:  req.BusinessUnitID,
		SourceReference: req.SourceReference,
		CreatedBy:       req.CreatedBy,
	}
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.process(r.Context(), req.toEvent())
	if err != nil {
		s.respondProcessError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Events []eventRequest `json:"events"`
}

type batchItem struct {
	Index  int                    `json:"index"`
	Result *models.PipelineResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// handleBatch processes each event in its own goroutine. Items carry the
// submission index since completion order is not guaranteed.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Events) == 0 {
		respondError(w, http.StatusBadRequest, "events required")
		return
	}

	items := make([]batchItem, len(req.Events))
	var wg sync.WaitGroup
	for i, evReq := range req.Events {
		wg.Add(1)
		go func(i int, evReq eventRequest) {
			defer wg.Done()
			result, err := s.process(r.Context(), evReq.toEvent())
			item := batchItem{Index: i, Result: result}
			if err != nil {
				item.Error = err.Error()
			}
			items[i] = item
		}(i, evReq)
	}
	wg.Wait()

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": items})
}

// process runs the pipeline and fans the result out to the optional sinks.
// Sink failures are logged, never surfaced to the submitter.
func (s *Server) process(ctx context.Context, ev models.Event) (*models.PipelineResult, error) {
	start := time.Now()
	result, err := s.pipeline.ProcessEvent(ctx, ev)
	if err != nil {
		var verr *triage.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ObserveValidationFailure(verr.Reason)
			s.metrics.ObserveProcessed("invalid", time.Since(start))
		} else {
			s.metrics.ObserveProcessed("error", time.Since(start))
		}
		return nil, err
	}
	s.metrics.ObserveProcessed("ok", time.Since(start))
	s.metrics.ObservePriority(string(result.Priority.Level))

	if s.publisher != nil {
		if err := s.publisher.PublishResult(ctx, result); err != nil {
			s.logger.Warn("publish result failed", zap.String("resultId", result.ID.String()), zap.Error(err))
		}
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveResult(ctx, result); err != nil {
			s.logger.Warn("archive result failed", zap.String("resultId", result.ID.String()), zap.Error(err))
		}
	}
	return result, nil
}

func (s *Server) respondProcessError(w http.ResponseWriter, err error) {
	var verr *triage.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  "event validation failed",
			"reason": verr.Reason,
		})
		return
	}
	var lerr *store.LookupError
	if errors.As(err, &lerr) {
		s.logger.Error("reference lookup failed", zap.String("lookup", lerr.Lookup), zap.String("id", lerr.ID), zap.Error(lerr.Err))
		respondError(w, http.StatusBadGateway, lerr.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.refs.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
