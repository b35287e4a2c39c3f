package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/flavorlab/reimburse-assistant/ocr"
	"github.com/flavorlab/reimburse-assistant/uploads"
	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type MockOcrClient struct {
	ExtractFunc func(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error)
}

func (m *MockOcrClient) Extract(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error) {
	return m.ExtractFunc(ctx, data, mimeType)
}

func newUploadRouter(t *testing.T, mock ocr.Client) (*gin.Engine, *uploads.Registry) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	db := setupTestDB(t)
	wf := workflow.NewService(db, cfg.OrgName, cfg.OrgTaxID)
	registry := uploads.NewRegistry()
	handler := NewUploadHandler(registry, mock, wf, cfg)

	router := gin.New()
	router.Use(identityMiddleware("6240210041", "user"))
	router.POST("/uploads", handler.Upload)
	router.GET("/uploads", handler.ListUploads)
	router.GET("/uploads/:id", handler.GetUpload)
	router.DELETE("/uploads/:id", handler.DeleteUpload)
	return router, registry
}

func multipartUpload(t *testing.T, router *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = fw.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)
	return w
}

func TestUploadRecognitionFlow(t *testing.T) {
	t.Run("Successful Recognition", func(t *testing.T) {
		mock := &MockOcrClient{
			ExtractFunc: func(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error) {
				return models.InvoiceData{
					InvoiceNumber: "INV-500",
					BuyerName:     "江南大学",
					BuyerTaxID:    "1210000071780177X1",
					Category:      "实验耗材",
					Amount:        42,
				}, nil
			},
		}
		router, registry := newUploadRouter(t, mock)

		w := multipartUpload(t, router, "invoice.png", []byte("image-bytes"))
		assert.Equal(t, http.StatusAccepted, w.Code)

		var entry uploads.ProcessingFile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))

		assert.Eventually(t, func() bool {
			got, ok := registry.Get(entry.ID)
			return ok && got.Status == uploads.StateCompleted
		}, time.Second, 10*time.Millisecond)

		got, _ := registry.Get(entry.ID)
		assert.Equal(t, "INV-500", got.ExtractedData.InvoiceNumber)
		assert.True(t, *got.IsBuyerValid)
		assert.False(t, *got.IsDuplicate)
	})

	t.Run("Recognition Failure Is Per File", func(t *testing.T) {
		mock := &MockOcrClient{
			ExtractFunc: func(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error) {
				return models.InvoiceData{}, &ocr.Error{Message: "识别失败", Err: errors.New("bad scan")}
			},
		}
		router, registry := newUploadRouter(t, mock)

		w := multipartUpload(t, router, "blurry.png", []byte("image-bytes"))
		assert.Equal(t, http.StatusAccepted, w.Code)

		var entry uploads.ProcessingFile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))

		assert.Eventually(t, func() bool {
			got, ok := registry.Get(entry.ID)
			return ok && got.Status == uploads.StateError
		}, time.Second, 10*time.Millisecond)

		got, _ := registry.Get(entry.ID)
		assert.Contains(t, got.Error, "识别失败")
	})

	t.Run("Invalid Payee Annotated Not Rejected", func(t *testing.T) {
		mock := &MockOcrClient{
			ExtractFunc: func(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error) {
				return models.InvoiceData{
					InvoiceNumber: "INV-501",
					BuyerName:     "无锡商贸有限公司",
					BuyerTaxID:    "999",
					Amount:        10,
				}, nil
			},
		}
		router, registry := newUploadRouter(t, mock)

		w := multipartUpload(t, router, "invoice.png", []byte("image-bytes"))
		var entry uploads.ProcessingFile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))

		assert.Eventually(t, func() bool {
			got, ok := registry.Get(entry.ID)
			return ok && got.Status == uploads.StateCompleted
		}, time.Second, 10*time.Millisecond)

		got, _ := registry.Get(entry.ID)
		assert.False(t, *got.IsBuyerValid)
	})

	t.Run("Missing File", func(t *testing.T) {
		router, _ := newUploadRouter(t, &MockOcrClient{})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/uploads", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Delete Removes Entry", func(t *testing.T) {
		router, registry := newUploadRouter(t, &MockOcrClient{
			ExtractFunc: func(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error) {
				return models.InvoiceData{InvoiceNumber: "INV-502", BuyerName: "江南大学"}, nil
			},
		})

		w := multipartUpload(t, router, "invoice.png", []byte("image-bytes"))
		var entry uploads.ProcessingFile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))

		dw := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/uploads/"+entry.ID, nil)
		router.ServeHTTP(dw, req)
		assert.Equal(t, http.StatusNoContent, dw.Code)

		_, ok := registry.Get(entry.ID)
		assert.False(t, ok)
	})
}
