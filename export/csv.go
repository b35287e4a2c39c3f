package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/flavorlab/reimburse-assistant/models"
)

// Header is the fixed CSV header row. Column order matches the exported
// spreadsheet users already work with.
var Header = []string{"发票号", "金额", "分类", "提交人", "学号", "导师", "状态", "当前进度"}

// Filename returns the download name for an export taken at the given
// epoch-millisecond instant.
func Filename(epochMillis int64) string {
	return fmt.Sprintf("报销清单_%d.csv", epochMillis)
}

// WriteCSV serializes the records as UTF-8 CSV with a BOM so spreadsheet
// software picks up the encoding. Rows follow the records' display order.
func WriteCSV(w io.Writer, records []models.SubmissionRecord) error {
	if _, err := w.Write([]byte("\ufeff")); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		paid := "待付"
		if r.IsPaid {
			paid = "已付"
		}
		row := []string{
			r.InvoiceNumber,
			strconv.FormatFloat(r.Amount, 'f', -1, 64),
			r.Category,
			r.Name,
			r.StudentID,
			r.Supervisor,
			paid,
			string(r.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
