package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// handleSummary serves the month aggregation. Defaults to the current month;
// anonymous requests get a zero-valued summary for the requested period.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'year' parameter")
			return
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'month' parameter")
			return
		}
		month = m
	}

	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid 'month' parameter, expected 1-12")
		return
	}
	if year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid 'year' parameter")
		return
	}

	period := core.MonthPeriod(year, month)

	ownerID := auth.OwnerID(r.Context())

	key := summaryCacheKey(ownerID, year, month)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.store.ListPeriod(r.Context(), ownerID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary listing failed",
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary, err := core.Summarize(period, txs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary aggregation failed",
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.summaryCache.Set(key, summary)

	writeJSON(w, http.StatusOK, summary)
}
