package handlers

import (
	"net/http"
	"strconv"

	"github.com/flavorlab/reimburse-assistant/config"
	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/flavorlab/reimburse-assistant/uploads"
	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecordHandler struct {
	db       *gorm.DB
	workflow *workflow.Service
	registry *uploads.Registry
	cfg      *config.Config
}

func NewRecordHandler(db *gorm.DB, wf *workflow.Service, registry *uploads.Registry, cfg *config.Config) *RecordHandler {
	return &RecordHandler{
		db:       db,
		workflow: wf,
		registry: registry,
		cfg:      cfg,
	}
}

type CreateRecordRequest struct {
	UploadID string `json:"upload_id" binding:"required"`
	IsPaid   bool   `json:"is_paid"`
}

// CreateRecord converts a completed upload entry into a submission
// record. The upload entry is only discarded after the record has been
// persisted, so a store failure leaves it available for a retry.
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	studentID, _ := contextIdentity(c)

	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, ok := h.registry.Get(req.UploadID)
	if !ok || entry.Owner != studentID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
		return
	}
	if entry.Status != uploads.StateCompleted || entry.ExtractedData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload has not finished recognition"})
		return
	}

	var profile models.UserProfile
	if err := h.db.Where("student_id = ?", studentID).First(&profile).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户信息丢失，请重新登录"})
		return
	}

	record, err := h.workflow.CreateSubmission(*entry.ExtractedData, profile, req.IsPaid)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	h.registry.Remove(entry.ID)
	c.JSON(http.StatusCreated, record)
}

// ListRecords returns the caller's records, newest first. With ?all=true
// an admin gets the unscoped set.
func (h *RecordHandler) ListRecords(c *gin.Context) {
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
	c.JSON(http.StatusOK, records)
}

// TogglePaid flips a record's payment status. Regular users get one edit
// per record and can only touch their own records; admins are exempt from
// both limits.
func (h *RecordHandler) TogglePaid(c *gin.Context) {
	studentID, isAdmin := contextIdentity(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	record, err := h.workflow.GetRecord(uint(id))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	if !isAdmin && record.StudentID != studentID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	updated, err := h.workflow.TogglePaidStatus(uint(id), isAdmin)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type AdvanceStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
	Reason string        `json:"reason"`
}

// AdvanceStatus moves a record through the approval pipeline. The route
// is admin-gated; the workflow trusts that check.
func (h *RecordHandler) AdvanceStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + string(req.Status)})
		return
	}

	record, err := h.workflow.AdvanceStatus(uint(id), req.Status, req.Reason)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
