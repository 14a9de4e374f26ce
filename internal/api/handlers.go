package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/greenwayb/replit-casevault-sub000/internal/docs"
	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
	"github.com/greenwayb/replit-casevault-sub000/internal/export"
	"github.com/greenwayb/replit-casevault-sub000/internal/repository"
	"github.com/greenwayb/replit-casevault-sub000/internal/review"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	docsSvc   *docs.Service
	reviewSvc *review.Service
	log       *logrus.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("[api] encode error: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeLookupError maps a failed document lookup to a response: a missing
// row is the client's problem, anything else is ours.
func (h *Handlers) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	h.log.Errorf("[api] lookup failed: %v", err)
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handlers) writeCSV(w http.ResponseWriter, filename string, p *export.Projection) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.WriteString(w, p.Render()); err != nil {
		h.log.Errorf("[api] write csv: %v", err)
	}
}

// --- ConfirmDocument ---

type confirmRequest struct {
	Analysis     string `json:"analysis"`
	ManualReview bool   `json:"manual_review"`
}

func (h *Handlers) ConfirmDocument(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Analysis == "" && !req.ManualReview {
		h.writeError(w, http.StatusBadRequest, "analysis is required unless manual_review is set")
		return
	}

	doc, err := h.docsSvc.Confirm(caseID, req.Analysis, req.ManualReview)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"document_id":          doc.ID,
		"account_group_number": doc.AccountGroupNumber,
		"document_number":      doc.DocumentNumber,
		"status":               doc.Status,
	})
}

// --- ListCaseDocuments ---

func (h *Handlers) ListCaseDocuments(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	documents, err := h.docsSvc.ListCase(caseID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"documents": documents,
		"total":     len(documents),
	})
}

// --- GetDocument ---

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, st, err := h.docsSvc.Get(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"document":  doc,
		"statement": st,
	})
}

// --- GetDocumentCSV ---

func (h *Handlers) GetDocumentCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.docsSvc.CSV(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeCSV(w, "transactions-"+id+".csv", p)
}

// --- GetDocumentFlows ---

func (h *Handlers) GetDocumentFlows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	period := r.URL.Query().Get("period")

	graph, err := h.docsSvc.Flows(id, period)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, graph)
}

// --- GetDocumentPeriods ---

func (h *Handlers) GetDocumentPeriods(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	periods, err := h.docsSvc.Periods(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"periods": periods})
}

// --- GetReviewRows ---

func (h *Handlers) GetReviewRows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rows, orphans, err := h.reviewSvc.Rows(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"transactions":         rows,
		"total":                len(rows),
		"orphaned_annotations": orphans,
	})
}

// --- UpsertReview ---

type upsertReviewRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Status      *string `json:"status,omitempty"`
	Comment     *string `json:"comment,omitempty"`
}

func (h *Handlers) UpsertReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req upsertReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Date == "" || req.Description == "" || req.Amount == "" {
		h.writeError(w, http.StatusBadRequest, "date, description and amount are required")
		return
	}

	key := domain.TransactionKey{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
	}

	var fields repository.UpsertFields
	if req.Status != nil {
		status := domain.ReviewStatus(*req.Status)
		fields.Status = &status
	}
	fields.Comment = req.Comment

	ann, err := h.reviewSvc.Upsert(id, key, fields)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ann)
}

// --- GetFlaggedCSV ---

func (h *Handlers) GetFlaggedCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rows, _, err := h.reviewSvc.Rows(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeCSV(w, "flagged-"+id+".csv", export.ProjectFlagged(rows))
}
