package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/flavorlab/reimburse-assistant/export"
	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	workflow *workflow.Service
}

func NewExportHandler(wf *workflow.Service) *ExportHandler {
	return &ExportHandler{workflow: wf}
}

// ExportCSV streams the caller's records as a CSV download; ?all=true
// gives an admin the unscoped set. An empty record set produces no
// download at all.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	studentID, isAdmin := contextIdentity(c)

	var records []models.SubmissionRecord
	var err error
	if c.Query("all") == "true" {
		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			return
		}
		records, err = h.workflow.ListAllRecords()
	} else {
		records, err = h.workflow.ListRecords(studentID)
	}
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	if len(records) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := export.Filename(time.Now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
