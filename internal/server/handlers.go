package server

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labforms/coc-extractor/internal/common"
	"github.com/labforms/coc-extractor/internal/export"
	"github.com/labforms/coc-extractor/internal/fields"
	"github.com/labforms/coc-extractor/internal/llm"
	"github.com/labforms/coc-extractor/internal/match"
	"github.com/labforms/coc-extractor/internal/pipeline"
	"github.com/labforms/coc-extractor/internal/repository"
)

// Handlers bundles the HTTP endpoints' dependencies. Results may be nil
// when no database is configured; result endpoints then return 503. Queue
// may be nil, which disables the async extract endpoint.
type Handlers struct {
	Processor *pipeline.Processor
	Queue     *pipeline.ExtractQueue
	Results   repository.ResultRepository
	Exporter  *export.Service
	Matcher   match.Matcher
	Logger    *slog.Logger
}

func NewHandlers(proc *pipeline.Processor, queue *pipeline.ExtractQueue, results repository.ResultRepository, exporter *export.Service, matcher match.Matcher, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Processor: proc,
		Queue:     queue,
		Results:   results,
		Exporter:  exporter,
		Matcher:   matcher,
		Logger:    logger,
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type pageInput struct {
	Page        int    `json:"page"`
	MIMEType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64"`
}

type unitInput struct {
	Page int    `json:"page"`
	Raw  string `json:"raw"`
}

type extractRequest struct {
	DocumentID string      `json:"document_id"`
	Pages      []pageInput `json:"pages"`
	Units      []unitInput `json:"units"`
}

// Extract runs the pipeline for one document. The request carries either
// page images for the vision model or pre-generated raw units for replay.
func (h *Handlers) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	v := common.NewValidator()
	v.Field("document_id", req.DocumentID, common.UUID)
	if len(req.Pages) == 0 && len(req.Units) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either pages or units must be provided"})
		return
	}
	if err := v.Error(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	documentID := uuid.New()
	if req.DocumentID != "" {
		documentID = uuid.MustParse(req.DocumentID)
	}
	ctx := common.WithDocumentID(c.Request.Context(), documentID.String())

	var (
		doc *pipeline.Document
		err error
	)
	if len(req.Units) > 0 {
		units := make([]pipeline.Unit, 0, len(req.Units))
		for _, u := range req.Units {
			units = append(units, pipeline.Unit{Page: u.Page, Raw: u.Raw})
		}
		doc, err = h.Processor.Assemble(units)
	} else {
		pages, ok := decodePages(c, req.Pages)
		if !ok {
			return
		}
		doc, err = h.Processor.Extract(ctx, pages)
	}

	if err != nil {
		if errors.Is(err, common.ErrNoRecords) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "document_id": documentID})
			return
		}
		h.Logger.Error("extract failed", "document_id", documentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
		return
	}

	resp := gin.H{"document_id": documentID, "document": doc}
	if h.Results != nil {
		if resultID, saveErr := h.Results.Save(ctx, documentID, doc); saveErr != nil {
			h.Logger.Error("result save failed", "document_id", documentID, "error", saveErr)
		} else {
			resp["result_id"] = resultID
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ExtractAsync queues the document for extraction and returns immediately.
// The finished document lands in the results store; poll GET /v1/results.
func (h *Handlers) ExtractAsync(c *gin.Context) {
	if h.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async extraction not configured"})
		return
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	v := common.NewValidator()
	v.Field("document_id", req.DocumentID, common.UUID)
	if len(req.Pages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pages must be provided"})
		return
	}
	if err := v.Error(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	documentID := uuid.New()
	if req.DocumentID != "" {
		documentID = uuid.MustParse(req.DocumentID)
	}
	pages, ok := decodePages(c, req.Pages)
	if !ok {
		return
	}

	job := pipeline.Job{DocumentID: documentID, Pages: pages}
	if err := h.Queue.Enqueue(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "document_id": documentID})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"document_id": documentID, "status": "queued"})
}

func decodePages(c *gin.Context, inputs []pageInput) ([]llm.PageImage, bool) {
	pages := make([]llm.PageImage, 0, len(inputs))
	for _, p := range inputs {
		data, err := base64.StdEncoding.DecodeString(p.ImageBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image_base64 for page", "page": p.Page})
			return nil, false
		}
		pages = append(pages, llm.PageImage{Page: p.Page, MIMEType: p.MIMEType, Data: data})
	}
	return pages, true
}

type compareRequest struct {
	Template  []fields.Record `json:"template"`
	Filled    []fields.Record `json:"filled"`
	Threshold float64         `json:"threshold"`
}

// Compare matches two independently recovered field sets.
func (h *Handlers) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	m := h.Matcher
	if req.Threshold > 0 {
		m.Threshold = req.Threshold
	}
	c.JSON(http.StatusOK, match.Compare(req.Template, req.Filled, m))
}

func (h *Handlers) ListResults(c *gin.Context) {
	if h.Results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "results store not configured"})
		return
	}
	results, err := h.Results.ListRecent(c.Request.Context(), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list results failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handlers) GetResult(c *gin.Context) {
	res, ok := h.lookupResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportResult streams a stored result as an XLSX workbook.
func (h *Handlers) ExportResult(c *gin.Context) {
	res, ok := h.lookupResult(c)
	if !ok {
		return
	}
	body, err := h.Exporter.DocumentXLSX(res.Document)
	if err != nil {
		h.Logger.Error("export failed", "result_id", res.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+res.ID.String()+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
}

func (h *Handlers) lookupResult(c *gin.Context) (*repository.ExtractionResult, bool) {
	if h.Results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "results store not configured"})
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return nil, false
	}
	res, err := h.Results.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get result failed"})
		}
		return nil, false
	}
	return res, true
}
