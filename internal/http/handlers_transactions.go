package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ts, err := s.service.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpList, err)
		return
	}
	if ts == nil {
		ts = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var f core.TransactionFields
	if err := decodeJSON(w, r, &f); err != nil {
		s.writeError(w, r, kindTransaction, applog.OpCreate, err)
		return
	}

	t, err := s.service.CreateTransaction(r.Context(), f)
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpCreate, err)
		return
	}

	s.logRecordChanged(r, applog.OpCreate, kindTransaction, t.ID, t.Category, t.Amount)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.GetTransaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var f core.TransactionFields
	if err := decodeJSON(w, r, &f); err != nil {
		s.writeError(w, r, kindTransaction, applog.OpUpdate, err)
		return
	}

	t, err := s.service.UpdateTransaction(r.Context(), mux.Vars(r)["id"], f)
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpUpdate, err)
		return
	}

	s.logRecordChanged(r, applog.OpUpdate, kindTransaction, t.ID, t.Category, t.Amount)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.DeleteTransaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, kindTransaction, applog.OpDelete, err)
		return
	}

	s.logRecordChanged(r, applog.OpDelete, kindTransaction, t.ID, t.Category, t.Amount)
	writeJSON(w, http.StatusOK, messageResponse{Message: kindTransaction + " deleted successfully"})
}

func (s *Server) logRecordChanged(r *http.Request, op, kind, id string, category core.Category, amount core.Money) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogRecordChanged(r.Context(), op, kind, id, category.String(), amount.Cents)
}
