package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/flavorlab/reimburse-assistant/config"
	"github.com/flavorlab/reimburse-assistant/ocr"
	"github.com/flavorlab/reimburse-assistant/uploads"
	"github.com/flavorlab/reimburse-assistant/validation"
	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	registry *uploads.Registry
	ocr      ocr.Client
	workflow *workflow.Service
	cfg      *config.Config
}

func NewUploadHandler(registry *uploads.Registry, ocrClient ocr.Client, wf *workflow.Service, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		registry: registry,
		ocr:      ocrClient,
		workflow: wf,
		cfg:      cfg,
	}
}

// Upload accepts one invoice file and starts recognition in the
// background. Files are processed independently; there is no limit on
// in-flight recognitions and no cancellation once one is started.
func (h *UploadHandler) Upload(c *gin.Context) {
	studentID, _ := contextIdentity(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	entry := h.registry.Add(studentID, fileHeader.Filename, mimeType, data)
	go h.process(entry.ID, data, mimeType)

	c.JSON(http.StatusAccepted, entry)
}

func (h *UploadHandler) process(id string, data []byte, mimeType string) {
	h.registry.MarkProcessing(id)

	invoice, err := h.ocr.Extract(context.Background(), data, mimeType)
	if err != nil {
		log.Printf("recognition failed for upload %s: %v", id, err)
		h.registry.Fail(id, err.Error())
		return
	}

	buyerValid := validation.IsPayeeValid(invoice, h.cfg.OrgName, h.cfg.OrgTaxID)

	existing, err := h.workflow.ListAllRecords()
	if err != nil {
		log.Printf("duplicate check failed for upload %s: %v", id, err)
		h.registry.Fail(id, err.Error())
		return
	}
	duplicate := validation.IsDuplicate(invoice.InvoiceNumber, existing)

	h.registry.Complete(id, invoice, buyerValid, duplicate)
}

// ListUploads returns the caller's in-flight and finished entries.
func (h *UploadHandler) ListUploads(c *gin.Context) {
	studentID, _ := contextIdentity(c)
	c.JSON(http.StatusOK, h.registry.ListByOwner(studentID))
}

// GetUpload returns one entry for polling.
func (h *UploadHandler) GetUpload(c *gin.Context) {
	studentID, isAdmin := contextIdentity(c)

	entry, ok := h.registry.Get(c.Param("id"))
	if !ok || (entry.Owner != studentID && !isAdmin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteUpload discards an entry the user no longer wants to submit.
func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	studentID, _ := contextIdentity(c)

	entry, ok := h.registry.Get(c.Param("id"))
	if !ok || entry.Owner != studentID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
		return
	}
	h.registry.Remove(entry.ID)
	c.Status(http.StatusNoContent)
}
