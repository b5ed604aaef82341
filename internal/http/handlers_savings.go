package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
)

type savingRequest struct {
	Name    string   `json:"name"`
	Goal    *float64 `json:"goal"`
	Initial *float64 `json:"initial"`
	Comment string   `json:"comment"`
}

func (r savingRequest) validate() (services.CreateSavingParams, error) {
	p := services.CreateSavingParams{Name: r.Name, Comment: r.Comment}
	if r.Goal != nil {
		p.Goal = *r.Goal
	}
	if r.Initial != nil {
		p.Initial = *r.Initial
	}
	sv := core.Saving{Name: p.Name, Goal: p.Goal, Initial: p.Initial}
	return p, sv.Validate()
}

type contributorRequest struct {
	MonthID string   `json:"monthId"`
	Plan    *float64 `json:"plan"`
	Actual  *float64 `json:"actual"`
}

func (r contributorRequest) validate() (core.Contributor, error) {
	c := core.Contributor{MonthID: r.MonthID}
	if r.Plan != nil {
		c.Plan = *r.Plan
	}
	if r.Actual != nil {
		c.Actual = *r.Actual
	}
	return c, c.Validate()
}

type spendingRequest struct {
	MonthID string   `json:"monthId"`
	Amount  *float64 `json:"amount"`
}

func (r spendingRequest) validate() (core.Spending, error) {
	sp := core.Spending{MonthID: r.MonthID}
	if r.Amount != nil {
		sp.Amount = *r.Amount
	}
	return sp, sp.Validate()
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	savings, err := s.savings.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"allSavings": savings})
}

func (s *Server) handleCreateSaving(w http.ResponseWriter, r *http.Request) {
	var req savingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	params, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saving, err := s.savings.Create(r.Context(), params)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"saving": saving})
}

func (s *Server) handleUpdateSaving(w http.ResponseWriter, r *http.Request) {
	var req savingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	params, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saving, err := s.savings.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saving": saving})
}

func (s *Server) handleDeleteSaving(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.savings.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (s *Server) handleAddContributor(w http.ResponseWriter, r *http.Request) {
	var req contributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contributor, err := s.savings.AddContributor(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contributor": contributor})
}

func (s *Server) handleUpdateContributor(w http.ResponseWriter, r *http.Request) {
	var req contributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Addressed by contributor id alone; the saving id in the path is not
	// consulted.
	if err := s.savings.UpdateContributor(r.Context(), chi.URLParam(r, "contributorId"), c.Plan, c.Actual); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contributor": req})
}

func (s *Server) handleRemoveContributor(w http.ResponseWriter, r *http.Request) {
	contributorID := chi.URLParam(r, "contributorId")
	if err := s.savings.RemoveContributor(r.Context(), chi.URLParam(r, "id"), contributorID); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": contributorID})
}

func (s *Server) handleAddSpending(w http.ResponseWriter, r *http.Request) {
	var req spendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sp, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	spending, err := s.savings.AddSpending(r.Context(), chi.URLParam(r, "id"), sp)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"spending": spending})
}

func (s *Server) handleUpdateSpending(w http.ResponseWriter, r *http.Request) {
	var req spendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sp, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.savings.UpdateSpending(r.Context(), chi.URLParam(r, "spendingId"), sp.Amount); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spending": req})
}

func (s *Server) handleRemoveSpending(w http.ResponseWriter, r *http.Request) {
	spendingID := chi.URLParam(r, "spendingId")
	if err := s.savings.RemoveSpending(r.Context(), chi.URLParam(r, "id"), spendingID); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": spendingID})
}
