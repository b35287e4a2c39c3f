package handlers

import (
	"errors"
	"net/http"

	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
)

// respondWorkflowError maps the workflow error taxonomy onto HTTP
// responses. Store failures are surfaced verbatim; nothing is retried.
func respondWorkflowError(c *gin.Context, err error) {
	var validationErr *workflow.ValidationError
	var transitionErr *workflow.InvalidTransitionError
	var storeErr *workflow.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason, "code": "ValidationFailure"})
	case errors.Is(err, workflow.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, workflow.ErrEditLimit):
		c.JSON(http.StatusForbidden, gin.H{"error": "支付状态仅可修改一次。", "code": "AuthorizationFailure"})
	case errors.Is(err, workflow.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "ReasonRequired"})
	case errors.Is(err, workflow.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNoActiveSurvey):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": transitionErr.Error(), "code": "InvalidTransition"})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": storeErr.Error(), "code": "StoreFailure"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func contextIdentity(c *gin.Context) (studentID string, isAdmin bool) {
	if v, exists := c.Get("studentID"); exists {
		studentID, _ = v.(string)
	}
	if v, exists := c.Get("role"); exists {
		role, _ := v.(string)
		isAdmin = role == "admin"
	}
	return studentID, isAdmin
}
