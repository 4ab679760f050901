package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	bs, err := s.service.ListBudgets(r.Context())
	if err != nil {
		s.writeError(w, r, kindBudget, applog.OpList, err)
		return
	}
	if bs == nil {
		bs = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, bs)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var f core.BudgetFields
	if err := decodeJSON(w, r, &f); err != nil {
		s.writeError(w, r, kindBudget, applog.OpCreate, err)
		return
	}

	b, err := s.service.CreateBudget(r.Context(), f)
	if err != nil {
		s.writeError(w, r, kindBudget, applog.OpCreate, err)
		return
	}

	s.logRecordChanged(r, applog.OpCreate, kindBudget, b.ID, b.Category, b.Amount)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.service.GetBudget(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, kindBudget, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var f core.BudgetFields
	if err := decodeJSON(w, r, &f); err != nil {
		s.writeError(w, r, kindBudget, applog.OpUpdate, err)
		return
	}

	b, err := s.service.UpdateBudget(r.Context(), mux.Vars(r)["id"], f)
	if err != nil {
		s.writeError(w, r, kindBudget, applog.OpUpdate, err)
		return
	}

	s.logRecordChanged(r, applog.OpUpdate, kindBudget, b.ID, b.Category, b.Amount)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.service.DeleteBudget(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, kindBudget, applog.OpDelete, err)
		return
	}

	s.logRecordChanged(r, applog.OpDelete, kindBudget, b.ID, b.Category, b.Amount)
	writeJSON(w, http.StatusOK, messageResponse{Message: kindBudget + " deleted successfully"})
}
