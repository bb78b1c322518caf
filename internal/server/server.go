// Package server exposes a loaded dataset over HTTP: rendered SVG
// snapshots at an arbitrary view, the cluster inventory, and the lineage
// graph. Rendered artifacts are cached through the cache layer.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pointscape/pkg/cache"
	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/engine"
	apperrors "github.com/matzehuels/pointscape/pkg/errors"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/imagecache"
	"github.com/matzehuels/pointscape/pkg/lineage"
	"github.com/matzehuels/pointscape/pkg/observability"
	"github.com/matzehuels/pointscape/pkg/render"
)

// Server serves one loaded dataset.
type Server struct {
	cfg    engine.Config
	logger *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer

	ds     *dataset.Dataset
	dsHash string

	// The engine is single-threaded; snapshot rendering takes the lock.
	mu  sync.Mutex
	eng *engine.Engine
}

// New builds a server around an already-loaded dataset. raw is the
// serialized dataset used for cache keying; a nil cache disables caching.
func New(ctx context.Context, cfg engine.Config, d *dataset.Dataset, raw []byte, c cache.Cache, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}

	eng := engine.New(cfg, imagecache.FileLoader{Root: cfg.ImageRoot}, nil, logger)
	if err := eng.Load(ctx, d); err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
		ds:     d,
		dsHash: cache.Hash(raw),
		eng:    eng,
	}, nil
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/clusters", s.handleClusters)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/lineage", s.handleLineage)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// clusterInfo is the /clusters response element.
type clusterInfo struct {
	ID       int        `json:"id"`
	Label    string     `json:"label"`
	Size     int        `json:"size"`
	Members  int        `json:"members"`
	Rank     int        `json:"rank"`
	Tier     int        `json:"tier"`
	Centroid [2]float64 `json:"centroid2D"`
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	out := make([]clusterInfo, len(s.ds.Clusters))
	for i, c := range s.ds.Clusters {
		out[i] = clusterInfo{
			ID:       c.ID,
			Label:    c.Label,
			Size:     c.Size,
			Members:  c.Members,
			Rank:     c.Rank,
			Tier:     c.Tier,
			Centroid: c.Centroid,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSnapshot renders an SVG snapshot. Query parameters:
//
//	zoom  - zoom level (default: the fit view minimum)
//	cx,cy - view center in data coordinates (default: dataset center)
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	scales := s.eng.Scales()
	minZoom, _ := scales.ZoomExtent()

	zoom, err := floatParam(r, "zoom", minZoom)
	if err == nil {
		err = apperrors.ValidateZoom(zoom)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	defCenter := scales.ToData(geom.Point{X: scales.Width / 2, Y: scales.Height / 2})
	cx, errX := floatParam(r, "cx", defCenter.X)
	cy, errY := floatParam(r, "cy", defCenter.Y)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, apperrors.New(apperrors.ErrCodeInvalidView, "cx/cy must be numbers"))
		return
	}

	key := s.keyer.SnapshotKey(s.dsHash, cache.SnapshotKeyOpts{
		Zoom:    zoom,
		CenterX: cx,
		CenterY: cy,
		Width:   s.cfg.Width,
		Height:  s.cfg.Height,
		Compact: s.cfg.Compact,
	})
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		observability.Cache().OnCacheHit(r.Context(), "snapshot")
		writeSVG(w, data)
		return
	}
	observability.Cache().OnCacheMiss(r.Context(), "snapshot")

	s.mu.Lock()
	target := scales.ToScreen(geom.Point{X: cx, Y: cy})
	frame := s.eng.Snapshot(geom.CenteredOn(target, zoom, scales.Width, scales.Height))
	s.mu.Unlock()

	svg := render.RenderSVG(frame, render.WithViewport(scales.Width, scales.Height))
	_ = s.cache.Set(r.Context(), key, svg, cache.TTLSnapshot)
	observability.Cache().OnCacheSet(r.Context(), "snapshot", len(svg))
	writeSVG(w, svg)
}

// handleLineage serves the cluster lineage graph as DOT (?format=dot) or
// rendered SVG (default).
func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}

	g := lineage.Build(s.ds)
	dot := lineage.ToDOT(g, lineage.Options{Detailed: r.URL.Query().Get("detailed") == "true"})

	switch format {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg":
		key := s.keyer.LineageKey(s.dsHash, r.URL.Query().Get("detailed") == "true")
		if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
			observability.Cache().OnCacheHit(r.Context(), "lineage")
			writeSVG(w, data)
			return
		}
		observability.Cache().OnCacheMiss(r.Context(), "lineage")
		svg, err := lineage.RenderSVG(dot)
		if err != nil {
			writeError(w, http.StatusInternalServerError,
				apperrors.Wrap(apperrors.ErrCodeInternal, err, "render lineage"))
			return
		}
		_ = s.cache.Set(r.Context(), key, svg, cache.TTLLineage)
		observability.Cache().OnCacheSet(r.Context(), "lineage", len(svg))
		writeSVG(w, svg)
	default:
		writeError(w, http.StatusBadRequest,
			apperrors.New(apperrors.ErrCodeInvalidInput, "unknown format: %q", format))
	}
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeInvalidView, "%s must be a number, got %q", name, raw)
	}
	return v, nil
}

func writeSVG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"error": apperrors.UserMessage(err),
		"code":  string(code),
	})
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
