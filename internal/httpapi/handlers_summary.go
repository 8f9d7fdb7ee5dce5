package httpapi

import (
	"net/http"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
)

// loadRecords fetches everything the aggregators need; they filter by owner
// and period themselves.
func (s *Server) loadRecords(r *http.Request) ([]core.Income, []core.Expense, error) {
	uid := userID(r)
	incomes, err := s.store.ListIncomesByUser(r.Context(), uid)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.store.ListExpensesByUser(r.Context(), uid)
	if err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	period := core.PeriodOfTime(s.now())
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := core.ParsePeriod(month)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		period = parsed
	}

	incomes, expenses, err := s.loadRecords(r)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	report := core.MonthlySummary(userID(r), period, incomes, expenses)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRangeSummary(w http.ResponseWriter, r *http.Request) {
	incomes, expenses, err := s.loadRecords(r)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	report, err := core.RangeSummary(userID(r),
		r.URL.Query().Get("start"), r.URL.Query().Get("end"), incomes, expenses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	incomes, expenses, err := s.loadRecords(r)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	alert := core.CheckBudget(userID(r), s.now(), incomes, expenses)
	writeJSON(w, http.StatusOK, alert)
}
