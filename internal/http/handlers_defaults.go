package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"budgetbook/internal/storage"
)

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.store.GetTemplate(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	// Null until the first template write.
	writeJSON(w, http.StatusOK, map[string]any{"defaults": tpl})
}

func (s *Server) handleAppendTemplateItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	if req.isIncome() {
		item := req.incomeItem()
		item.ID = uuid.NewString()
		item.Date = now
		if err := s.store.AppendTemplateIncome(r.Context(), item); err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"default": item})
		return
	}
	item := req.budgetItem()
	item.ID = uuid.NewString()
	item.Date = now
	if err := s.store.AppendTemplateBudget(r.Context(), item); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"default": item})
}

func (s *Server) handleUpdateTemplateItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	itemID := chi.URLParam(r, "id")
	var err error
	if req.isIncome() {
		err = s.store.UpdateTemplateIncome(r.Context(), itemID, req.Name, *req.Value)
	} else {
		err = s.store.UpdateTemplateBudget(r.Context(), itemID, req.Name, *req.Plan, *req.Actual, req.CategoryID)
	}
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"default": req})
}

func (s *Server) handleRemoveTemplateIncome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveTemplateItem(r.Context(), id, storage.KindIncome); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleRemoveTemplateBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveTemplateItem(r.Context(), id, storage.KindBudget); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
