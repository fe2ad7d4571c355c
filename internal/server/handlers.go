package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"diet-planner/internal/app"
	"diet-planner/internal/export"
	"diet-planner/internal/logger"
	"diet-planner/internal/metrics"
	"diet-planner/internal/nutrition"
	"diet-planner/internal/planner"
)

const maxBodyBytes = 64 << 10

type healthResponse struct {
	Status string            `json:"status"`
	Foods  int               `json:"foods"`
	System metrics.SysHealth `json:"system"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Foods:  s.app.Planner().Catalog().Len(),
		System: metrics.GetSysHealth(s.opts.DatabasePath),
	})
}

func (s *Server) handleListFoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Planner().Catalog().Items())
}

// decodePlan reads a PlanRequest body and runs it. It writes the error
// response itself and returns ok=false when the request cannot be planned.
func (s *Server) decodePlan(w http.ResponseWriter, r *http.Request) (planner.Report, bool) {
	var input app.PlanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return planner.Report{}, false
	}

	report, err := s.app.GeneratePlan(r.Context(), input)
	if err != nil {
		if errors.Is(err, nutrition.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return planner.Report{}, false
		}
		logger.Error("Failed to generate plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return planner.Report{}, false
	}
	return report, true
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	report, ok := s.decodePlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, reportStatus(report), report)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := s.decodePlan(w, r)
	if !ok {
		return
	}
	if report.Status != planner.StatusSuccess {
		writeJSON(w, reportStatus(report), report)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report); err != nil {
		logger.Error("Failed to export plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=meal_plan.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// reportStatus maps a report to an HTTP status: failed plans are 422, except
// solver faults and timeouts which are server-side.
func reportStatus(report planner.Report) int {
	switch {
	case report.Status == planner.StatusSuccess:
		return http.StatusOK
	case report.ErrorKind == planner.KindSolverFault:
		return http.StatusInternalServerError
	case report.ErrorKind == planner.KindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}
