package server

import (
	"net/http"
	"strings"

	"fjacquet/statement-categorizer/internal/categorizer"
	"fjacquet/statement-categorizer/internal/factory"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/report"
	"fjacquet/statement-categorizer/internal/validation"

	"github.com/shopspring/decimal"
)

type convertResponse struct {
	Success      bool                       `json:"success"`
	Transactions []models.Transaction       `json:"transactions"`
	Metadata     models.StatementMetadata   `json:"metadata"`
	Stats        models.CategorizationStats `json:"stats"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, &parsererror.ValidationError{Reason: "Failed to parse upload form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, &parsererror.ValidationError{Reason: "No file provided"})
		return
	}
	defer func() { _ = file.Close() }()

	kind, err := validation.ValidateUpload(header.Filename, header.Size, header.Header.Get("Content-Type"), s.cfg.MaxUploadBytes)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := factory.GetParser(factory.ParserType(kind), s.parsers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	stmt, err := p.Parse(r.Context(), file)
	if err != nil {
		s.writeError(w, err)
		return
	}

	categorized := s.cat.CategorizeAll(stmt.Transactions, s.state.Rules())
	s.state.AppendTransactions(categorized)

	s.logger.Info("Statement uploaded",
		logging.F(logging.FieldFile, validation.SanitizeFileName(header.Filename)),
		logging.F(logging.FieldFormat, kind),
		logging.F(logging.FieldCount, len(categorized)))

	writeJSON(w, http.StatusOK, convertResponse{
		Success:      true,
		Transactions: categorized,
		Metadata:     stmt.Metadata,
		Stats:        models.ComputeStats(categorized),
	})
}

type categorizeRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	MCC         int             `json:"mcc,omitempty"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	tx := models.Transaction{
		Amount: req.Amount,
		Type:   models.TypeFromAmount(req.Amount),
		MCC:    req.MCC,
	}
	res := s.cat.Categorize(validation.SanitizeDescription(req.Description), tx, s.state.Rules())
	writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Transactions []models.Transaction `json:"transactions"`
}

type batchResponse struct {
	Success         bool                         `json:"success"`
	Error           string                       `json:"error,omitempty"`
	Categorizations []categorizer.Categorization `json:"categorizations"`
	Processed       int                          `json:"processedCount"`
	Remaining       int                          `json:"remainingCount"`
}

func (s *Server) handleBatchCategorize(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Transactions == nil {
		s.writeError(w, &parsererror.ValidationError{Reason: "Transactions array is required"})
		return
	}
	if s.escalator == nil || !s.escalator.Enabled() {
		writeJSON(w, http.StatusOK, batchResponse{
			Error:           parsererror.ErrAIUnavailable.Error(),
			Categorizations: []categorizer.Categorization{},
		})
		return
	}

	res := s.escalator.Escalate(r.Context(), req.Transactions)
	categorizations := res.Categorizations
	if categorizations == nil {
		categorizations = []categorizer.Categorization{}
	}
	writeJSON(w, http.StatusOK, batchResponse{
		Success:         true,
		Categorizations: categorizations,
		Processed:       res.Processed,
		Remaining:       res.Remaining,
	})
}

type searchRequest struct {
	MerchantName string `json:"merchantName"`
}

type searchResponse struct {
	Success      bool                 `json:"success"`
	MerchantInfo *models.MerchantInfo `json:"merchantInfo"`
}

func (s *Server) handleSearchMerchant(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	name := strings.TrimSpace(validation.SanitizeDescription(req.MerchantName))
	if name == "" {
		s.writeError(w, &parsererror.ValidationError{Reason: "Merchant name is required"})
		return
	}

	var (
		info *models.MerchantInfo
		err  error
	)
	if s.escalator != nil && s.escalator.Enabled() {
		info, err = s.escalator.LookupMerchant(r.Context(), name)
		if err != nil {
			s.logger.WithError(err).Warn("Merchant lookup failed, using keyword heuristic",
				logging.F(logging.FieldMerchant, name))
		}
	}
	if info == nil {
		if info, err = s.heuristic.Lookup(r.Context(), name); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Success: true, MerchantInfo: info})
}

type reportRequest struct {
	Transactions         []models.Transaction `json:"transactions"`
	FiscalYearStartMonth int                  `json:"fiscalYearStartMonth,omitempty"`
	PeriodStart          string               `json:"periodStart,omitempty"`
	PeriodEnd            string               `json:"periodEnd,omitempty"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.FiscalYearStartMonth != 0 && (req.FiscalYearStartMonth < 1 || req.FiscalYearStartMonth > 12) {
		s.writeError(w, &parsererror.ValidationError{Reason: "fiscalYearStartMonth must be between 1 and 12"})
		return
	}
	rep := report.Aggregate(req.Transactions, req.PeriodStart, req.PeriodEnd)
	if req.FiscalYearStartMonth != 0 {
		rep.FiscalYearStartMonth = req.FiscalYearStartMonth
	}
	writeJSON(w, http.StatusOK, rep)
}

type rulesResponse struct {
	Success bool                  `json:"success"`
	Rules   []models.MerchantRule `json:"rules"`
}

func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	rules := s.state.Rules()
	if rules == nil {
		rules = []models.MerchantRule{}
	}
	writeJSON(w, http.StatusOK, rulesResponse{Success: true, Rules: rules})
}

type ruleRequest struct {
	MerchantName string `json:"merchantName"`
	Category     string `json:"category"`
}

type ruleResponse struct {
	Success bool                `json:"success"`
	Rule    models.MerchantRule `json:"rule"`
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.MerchantName) == "" || strings.TrimSpace(req.Category) == "" {
		s.writeError(w, &parsererror.ValidationError{Reason: "merchantName and category are required"})
		return
	}
	rule, err := s.state.AddMerchantRule(req.MerchantName, req.Category)
	if err != nil {
		s.writeError(w, &parsererror.ValidationError{Reason: err.Error()})
		return
	}
	if err := s.state.Save(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ruleResponse{Success: true, Rule: rule})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	merchant := r.PathValue("merchant")
	if !s.state.RemoveMerchantRule(merchant) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "rule not found"})
		return
	}
	if err := s.state.Save(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
