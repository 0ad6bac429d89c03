package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"saldo/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	expenses, err := s.ledger.ListExpenses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, expensesJSON(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := decodeExpense(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	userID, _ := UserID(r.Context())
	created, err := s.ledger.CreateExpense(r.Context(), userID, e)
	if err != nil {
		writeServiceError(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := decodeExpense(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	e.ID = chi.URLParam(r, "id")
	userID, _ := UserID(r.Context())
	updated, err := s.ledger.UpdateExpense(r.Context(), userID, e)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	if err := s.ledger.DeleteExpense(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
