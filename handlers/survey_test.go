package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSurveyEnv(t *testing.T) (*gin.Engine, *workflow.Service) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	wf := workflow.NewService(setupTestDB(t), cfg.OrgName, cfg.OrgTaxID)
	handler := NewSurveyHandler(wf)

	router := gin.New()
	router.Use(identityMiddleware("6240210041", "user"))
	router.GET("/survey", handler.Current)
	router.POST("/survey/answer", handler.Answer)
	return router, wf
}

func surveySubmission(t *testing.T, wf *workflow.Service, isPaid bool) *models.SubmissionRecord {
	record, err := wf.CreateSubmission(models.InvoiceData{
		InvoiceNumber: "INV-600",
		BuyerName:     "江南大学",
		BuyerTaxID:    "1210000071780177X1",
		Amount:        50,
	}, models.UserProfile{Name: "张三", StudentID: "6240210041"}, isPaid)
	assert.NoError(t, err)
	return record
}

func TestSurveyEndpoints(t *testing.T) {
	t.Run("No Pending Question", func(t *testing.T) {
		router, _ := newSurveyEnv(t)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/survey", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"pending":false`)
	})

	t.Run("Answer Sequence For Paid Submission", func(t *testing.T) {
		router, wf := newSurveyEnv(t)
		record := surveySubmission(t, wf, true)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/survey", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "double_signature")

		yes := true
		aw := postJSON(router, "/survey/answer", AnswerRequest{Answer: &yes})
		assert.Equal(t, http.StatusOK, aw.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/survey", nil)
		router.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), "payment_record")

		no := false
		aw = postJSON(router, "/survey/answer", AnswerRequest{Answer: &no})
		assert.Equal(t, http.StatusOK, aw.Code)

		var answered models.SubmissionRecord
		assert.NoError(t, json.Unmarshal(aw.Body.Bytes(), &answered))
		assert.Equal(t, record.ID, answered.ID)
		assert.True(t, *answered.SurveyAnswers.HasDoubleSignature)
		assert.False(t, *answered.SurveyAnswers.HasPaymentRecord)

		// queue drained, session closed
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/survey", nil)
		router.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), `"pending":false`)
	})

	t.Run("Answer Without Session", func(t *testing.T) {
		router, _ := newSurveyEnv(t)
		yes := true
		w := postJSON(router, "/survey/answer", AnswerRequest{Answer: &yes})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("False Answer Passes Binding", func(t *testing.T) {
		router, wf := newSurveyEnv(t)
		surveySubmission(t, wf, false)

		no := false
		w := postJSON(router, "/survey/answer", AnswerRequest{Answer: &no})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
