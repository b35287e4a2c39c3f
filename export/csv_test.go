package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/stretchr/testify/assert"
)

func TestWriteCSV(t *testing.T) {
	records := []models.SubmissionRecord{
		{
			InvoiceData: models.InvoiceData{InvoiceNumber: "INV-001", Amount: 256.8, Category: "实验耗材"},
			Name:        "张三",
			StudentID:   "6240210041",
			Supervisor:  "韩老师",
			IsPaid:      true,
			Status:      models.StatusBox,
		},
		{
			InvoiceData: models.InvoiceData{InvoiceNumber: "INV-002", Amount: 1024, Category: "办公用品"},
			Name:        "李四",
			StudentID:   "6240210042",
			Supervisor:  "王老师",
			IsPaid:      false,
			Status:      models.StatusRejected,
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteCSV(&buf, records))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"), "export must carry a UTF-8 BOM")

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	rows, err := reader.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"INV-001", "256.8", "实验耗材", "张三", "6240210041", "韩老师", "已付", "box"}, rows[1])
	assert.Equal(t, []string{"INV-002", "1024", "办公用品", "李四", "6240210042", "王老师", "待付", "rejected"}, rows[2])
}

func TestWriteCSVRoundTrip(t *testing.T) {
	records := []models.SubmissionRecord{
		{InvoiceData: models.InvoiceData{InvoiceNumber: "AB-001", Amount: 12.5}, Status: models.StatusBox},
		{InvoiceData: models.InvoiceData{InvoiceNumber: "AB-002", Amount: 999.99}, Status: models.StatusSuccess},
		{InvoiceData: models.InvoiceData{InvoiceNumber: "AB-003", Amount: 0}, Status: models.StatusOffice},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteCSV(&buf, records))

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff")))
	rows, err := reader.ReadAll()
	assert.NoError(t, err)

	// re-parsing yields the same (invoiceNumber, amount, status) tuples
	assert.Len(t, rows, len(records)+1)
	for i, r := range records {
		row := rows[i+1]
		assert.Equal(t, r.InvoiceNumber, row[0])
		amount, err := strconv.ParseFloat(row[1], 64)
		assert.NoError(t, err)
		assert.Equal(t, r.Amount, amount)
		assert.Equal(t, string(r.Status), row[7])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteCSV(&buf, nil))

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff")))
	rows, err := reader.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 1) // header only; the handler skips the download entirely
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "报销清单_1700000000000.csv", Filename(1700000000000))
}
