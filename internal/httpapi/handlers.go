package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/ecboard/internal/aggregate"
	"github.com/KaramelBytes/ecboard/internal/chart"
	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/export"
)

// snapshotInfo identifies the dataset a response was computed from.
type snapshotInfo struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loaded_at"`
}

type groupInfo struct {
	Name        string  `json:"name"`
	EC          float64 `json:"ec"`
	Color       string  `json:"color"`
	Environment bool    `json:"environment"`
	Growth      bool    `json:"growth"`
}

type overviewResponse struct {
	Dataset snapshotInfo `json:"dataset"`
	aggregate.Headline
}

type summaryResponse struct {
	Dataset snapshotInfo             `json:"dataset"`
	Groups  []aggregate.GroupSummary `json:"groups"`
}

// scatterAxes maps short query values of ?x= to growth columns.
var scatterAxes = map[string]string{
	"leaf_count":   dataset.ColLeafCount,
	"leaves":       dataset.ColLeafCount,
	"shoot_length": dataset.ColShootLength,
	"shoot":        dataset.ColShootLength,
}

func info(ds *dataset.Dataset) snapshotInfo {
	return snapshotInfo{ID: ds.ID(), LoadedAt: ds.LoadedAt()}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ds := s.current.Load()
	if ds == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  errNotReady.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "dataset_id": ds.ID()})
}

func (s *Server) handleGroups(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.snapshot(w)
	if !ok {
		return
	}
	env, growth := ds.Environment(), ds.Growth()
	out := make([]groupInfo, 0, ds.Groups().Len())
	for _, g := range ds.Groups().All() {
		_, hasEnv := env[g.Name]
		_, hasGrowth := growth[g.Name]
		out = append(out, groupInfo{Name: g.Name, EC: g.EC, Color: g.Color, Environment: hasEnv, Growth: hasGrowth})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOverview(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.snapshot(w)
	if !ok {
		return
	}
	h, err := aggregate.Overview(ds)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{Dataset: info(ds), Headline: h})
}

func (s *Server) handleEnvironmentSummary(w http.ResponseWriter, _ *http.Request) {
	s.summary(w, aggregate.EnvironmentSummaries)
}

func (s *Server) handleGrowthSummary(w http.ResponseWriter, _ *http.Request) {
	s.summary(w, aggregate.GrowthSummaries)
}

func (s *Server) summary(w http.ResponseWriter, compute func(*dataset.Dataset) ([]aggregate.GroupSummary, error)) {
	ds, ok := s.snapshot(w)
	if !ok {
		return
	}
	sums, err := compute(ds)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Dataset: info(ds), Groups: sums})
}

func (s *Server) handleChartList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"charts": chart.Names()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.snapshot(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	params := chart.Params{Group: q.Get("group"), X: q.Get("x")}
	if col, ok := scatterAxes[strings.ToLower(params.X)]; ok {
		params.X = col
	}
	fig, err := chart.Build(r.PathValue("name"), ds, params)
	if err != nil {
		s.fail(w, err)
		return
	}

	switch format := q.Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, fig)
	case "png":
		var buf bytes.Buffer
		if err := chart.RenderPNG(&buf, fig); err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid format %q (expected json or png)", format))
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeError(w, http.StatusNotImplemented, "reload is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	prev := s.current.Load()
	ds, err := s.reloader.Reload(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.current.Store(ds)
	changed := ds != prev
	if changed {
		s.logger.Info("dataset swapped", "id", ds.ID())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dataset": info(ds),
		"changed": changed,
	})
}

func (s *Server) handleEnvironmentDownload(w http.ResponseWriter, _ *http.Request) {
	s.download(w, export.EnvironmentFile, export.CSVContentType, export.WriteEnvironmentCSV)
}

func (s *Server) handleGrowthDownload(w http.ResponseWriter, _ *http.Request) {
	s.download(w, export.GrowthFile, export.XLSXContentType, export.WriteGrowthXLSX)
}

// download renders the whole body before writing headers so failures still produce a JSON error.
func (s *Server) download(w http.ResponseWriter, name, contentType string, write func(io.Writer, *dataset.Dataset) error) {
	ds, ok := s.snapshot(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, ds); err != nil {
		s.fail(w, err)
		return
	}
	s.metrics.Exports.WithLabelValues(name).Inc()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// fail maps domain errors to status codes and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrUnknownGroup),
		errors.Is(err, chart.ErrUnknownChart),
		errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, chart.ErrBadParam):
		return http.StatusBadRequest
	case errors.Is(err, aggregate.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
