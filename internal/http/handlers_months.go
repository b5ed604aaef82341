package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
)

type monthRequest struct {
	Name               string `json:"name"`
	Comment            string `json:"comment"`
	PredecessorMonthID string `json:"predecessorMonthId"`
	Default            bool   `json:"default"`
}

type balanceUpdateRequest struct {
	Balance *float64 `json:"balance"`
	Opening *float64 `json:"opening"`
	Comment string   `json:"comment"`
}

type toggleCloseRequest struct {
	Closed        *bool    `json:"closed"`
	SumAllSavings *float64 `json:"sumAllSavings"`
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.months.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"allMonths": months})
}

func (s *Server) handleGetMonthBySlug(w http.ResponseWriter, r *http.Request) {
	month, err := s.months.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	// Absent months come back as null, not 404.
	writeJSON(w, http.StatusOK, map[string]any{"month": month})
}

func (s *Server) handleCreateMonth(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := core.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	month, err := s.months.Create(r.Context(), services.CreateMonthParams{
		Name:               req.Name,
		Comment:            req.Comment,
		PredecessorMonthID: req.PredecessorMonthID,
		Default:            req.Default,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"month": month})
}

func (s *Server) handleUpdateMonth(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := core.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	month, err := s.months.Update(r.Context(), chi.URLParam(r, "id"), services.CreateMonthParams{
		Name:               req.Name,
		Comment:            req.Comment,
		PredecessorMonthID: req.PredecessorMonthID,
		Default:            req.Default,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month})
}

func (s *Server) handleSetDefaultMonth(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.months.SetDefault(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Balance == nil {
		writeError(w, http.StatusBadRequest, "balance is required")
		return
	}
	if req.Opening == nil {
		writeError(w, http.StatusBadRequest, "opening is required")
		return
	}
	if *req.Balance < 0 {
		writeError(w, http.StatusBadRequest, core.ErrNegativeBalance.Error())
		return
	}
	if *req.Opening < 0 {
		writeError(w, http.StatusBadRequest, core.ErrNegativeOpening.Error())
		return
	}

	month, err := s.months.UpdateBalance(r.Context(), chi.URLParam(r, "id"), *req.Balance, *req.Opening, req.Comment)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"update": month})
}

func (s *Server) handleToggleClose(w http.ResponseWriter, r *http.Request) {
	var req toggleCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Closed == nil {
		writeError(w, http.StatusBadRequest, "closed is required")
		return
	}
	if req.SumAllSavings == nil {
		writeError(w, http.StatusBadRequest, "sumAllSavings is required")
		return
	}
	if *req.SumAllSavings < 0 {
		writeError(w, http.StatusBadRequest, core.ErrNegativeSavings.Error())
		return
	}

	month, err := s.months.ToggleClose(r.Context(), chi.URLParam(r, "id"), *req.Closed, *req.SumAllSavings)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"update": month})
}

func (s *Server) handleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.months.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (s *Server) handleAddLineItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	monthID := chi.URLParam(r, "id")
	if req.isIncome() {
		item, err := s.months.AddIncome(r.Context(), monthID, req.incomeItem())
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"item": item})
		return
	}
	item, err := s.months.AddBudget(r.Context(), monthID, req.budgetItem())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": item})
}

func (s *Server) handleUpdateLineItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	monthID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	var err error
	if req.isIncome() {
		err = s.months.UpdateIncome(r.Context(), monthID, itemID, req.incomeItem())
	} else {
		err = s.months.UpdateBudget(r.Context(), monthID, itemID, req.budgetItem())
	}
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": req})
}

func (s *Server) handleRemoveIncomeItem(w http.ResponseWriter, r *http.Request) {
	monthID := chi.URLParam(r, "id")
	if err := s.months.RemoveIncome(r.Context(), monthID, chi.URLParam(r, "itemId")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": monthID})
}

func (s *Server) handleRemoveBudgetItem(w http.ResponseWriter, r *http.Request) {
	monthID := chi.URLParam(r, "id")
	if err := s.months.RemoveBudget(r.Context(), monthID, chi.URLParam(r, "itemId")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": monthID})
}
