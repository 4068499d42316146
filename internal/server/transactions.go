package server

import (
	"net/http"
	"strings"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
)

type transactionsResponse struct {
	Success      bool                       `json:"success"`
	Transactions []models.Transaction       `json:"transactions"`
	Stats        models.CategorizationStats `json:"stats"`
}

func (s *Server) listResponse(txs []models.Transaction) transactionsResponse {
	if txs == nil {
		txs = []models.Transaction{}
	}
	return transactionsResponse{Success: true, Transactions: txs, Stats: models.ComputeStats(txs)}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.listResponse(s.state.Transactions()))
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.listResponse(s.state.ReviewQueue()))
}

func (s *Server) handleRecategorize(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.listResponse(s.state.Recategorize()))
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, _ *http.Request) {
	s.state.ClearTransactions()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type transactionResponse struct {
	Success     bool               `json:"success"`
	Transaction models.Transaction `json:"transaction"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch models.Patch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	if patch.Confidence != nil && (*patch.Confidence < 0 || *patch.Confidence > 1) {
		s.writeError(w, &parsererror.ValidationError{Reason: "confidence must be between 0 and 1"})
		return
	}
	tx, err := s.state.UpdateTransaction(r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{Success: true, Transaction: tx})
}

type approveRequest struct {
	Category string `json:"category"`
	Remember bool   `json:"remember"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		s.writeError(w, &parsererror.ValidationError{Reason: "category is required"})
		return
	}
	tx, err := s.state.Approve(r.PathValue("id"), req.Category, req.Remember)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Remember {
		if err := s.state.Save(); err != nil {
			s.logger.WithError(err).Warn("Failed to persist merchant rules",
				logging.F(logging.FieldTransactionID, tx.ID))
		}
	}
	writeJSON(w, http.StatusOK, transactionResponse{Success: true, Transaction: tx})
}
