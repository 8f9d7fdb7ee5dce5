package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
)

type createIncomeRequest struct {
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
}

// updateIncomeRequest uses pointers so omitted fields keep their value.
type updateIncomeRequest struct {
	Amount      *core.Money `json:"amount"`
	Date        *string     `json:"date"`
	Source      *string     `json:"source"`
	Description *string     `json:"description"`
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.store.ListIncomesByUser(r.Context(), userID(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if start != "" || end != "" {
		filtered, err := filterIncomesByRange(incomes, start, end)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		incomes = filtered
	}
	writeJSON(w, http.StatusOK, incomes)
}

// filterIncomesByRange keeps incomes whose date falls inside the inclusive
// bounds; either bound may be empty to leave that side open.
func filterIncomesByRange(incomes []core.Income, start, end string) ([]core.Income, error) {
	var startDate, endDate core.Date
	var err error
	if start != "" {
		if startDate, err = core.ParseDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if endDate, err = core.ParseDate(end); err != nil {
			return nil, err
		}
	}

	filtered := []core.Income{}
	for _, inc := range incomes {
		if !startDate.IsZero() && inc.Date.Time.Before(startDate.Time) {
			continue
		}
		if !endDate.IsZero() && inc.Date.Time.After(endDate.Time) {
			continue
		}
		filtered = append(filtered, inc)
	}
	return filtered, nil
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req createIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inc := core.Income{
		ID:          uuid.NewString(),
		UserID:      userID(r),
		Amount:      req.Amount,
		Date:        date,
		Source:      req.Source,
		Description: req.Description,
		CreatedAt:   s.now(),
	}
	if err := inc.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.CreateIncome(r.Context(), inc); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inc)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	inc, err := s.store.GetIncome(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req updateIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inc, err := s.store.GetIncome(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	if req.Amount != nil {
		inc.Amount = *req.Amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inc.Date = date
	}
	if req.Source != nil {
		inc.Source = *req.Source
	}
	if req.Description != nil {
		inc.Description = *req.Description
	}

	if err := inc.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateIncome(r.Context(), inc); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteIncome(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
