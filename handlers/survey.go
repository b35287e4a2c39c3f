package handlers

import (
	"net/http"

	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	workflow *workflow.Service
}

func NewSurveyHandler(wf *workflow.Service) *SurveyHandler {
	return &SurveyHandler{workflow: wf}
}

// Current returns the caller's pending compliance question, if any.
func (h *SurveyHandler) Current(c *gin.Context) {
	studentID, _ := contextIdentity(c)

	recordID, question, ok := h.workflow.Surveys().Current(studentID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending":   true,
		"record_id": recordID,
		"type":      question,
		"question":  question.Question(),
	})
}

type AnswerRequest struct {
	Answer *bool `json:"answer" binding:"required"`
}

// Answer records the caller's yes/no response to the front-of-queue
// question. The question stays queued if persistence fails.
func (h *SurveyHandler) Answer(c *gin.Context) {
	studentID, _ := contextIdentity(c)

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.workflow.AnswerSurvey(studentID, *req.Answer)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
