package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/insights"
	applog "fintrack/internal/log"
)

const kindInsight = "Insight"

// handleInsights returns the budget insights for ?month=&year=, defaulting
// to the current month.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, kindInsight, applog.OpCompute, err)
		return
	}

	rows, err := s.service.Insights(r.Context(), period)
	if err != nil {
		s.writeError(w, r, kindInsight, applog.OpCompute, err)
		return
	}
	if rows == nil {
		rows = []insights.Insight{}
	}

	fields := applog.NewFields().
		WithPeriod(period.Month, period.Year).
		WithOperation(applog.OpCompute)
	fields[applog.FieldCount] = len(rows)
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Insights computed", fields.ToSlice()...)
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.service.MonthlyTotals(r.Context())
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpList, err)
		return
	}
	if totals == nil {
		totals = []core.MonthTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.service.CategoryBreakdown(r.Context())
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpList, err)
		return
	}
	if breakdown == nil {
		breakdown = []core.CategoryAmount{}
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Categories)
}
