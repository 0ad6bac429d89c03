package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"saldo/internal/log"
)

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	incomes, err := s.ledger.ListIncomes(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, incomesJSON(incomes))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	in, err := decodeIncome(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	userID, _ := UserID(r.Context())
	created, err := s.ledger.CreateIncome(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeJSON(created))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	in, err := decodeIncome(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	in.ID = chi.URLParam(r, "id")
	userID, _ := UserID(r.Context())
	updated, err := s.ledger.UpdateIncome(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeJSON(updated))
}

// handleToggleIncome flips the pending flag; the balance changes with it.
func (s *Server) handleToggleIncome(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	toggled, err := s.ledger.ToggleIncomePending(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, log.OpToggle)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeJSON(toggled))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	if err := s.ledger.DeleteIncome(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
