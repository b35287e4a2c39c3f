package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceData holds the fields extracted from an invoice by the OCR
// service. Immutable once attached to a SubmissionRecord.
type InvoiceData struct {
	InvoiceNumber     string  `gorm:"size:100;not null" json:"invoice_number"`
	SellerName        string  `gorm:"size:255" json:"seller_name"`
	BuyerName         string  `gorm:"size:255" json:"buyer_name"`
	SellerTaxID       string  `gorm:"size:50" json:"seller_tax_id"`
	BuyerTaxID        string  `gorm:"size:50" json:"buyer_tax_id"`
	SellerBankAccount string  `gorm:"size:255" json:"seller_bank_account"`
	Category          string  `gorm:"size:100" json:"category"`
	Amount            float64 `gorm:"not null" json:"amount"`
}

// SurveyAnswers is the compliance questionnaire state attached to a
// record. Keys are filled in as the owner answers; later answers for
// the same key overwrite earlier ones.
type SurveyAnswers struct {
	HasDoubleSignature *bool `json:"has_double_signature,omitempty"`
	HasPaymentRecord   *bool `json:"has_payment_record,omitempty"`
}

type SubmissionRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InvoiceData `gorm:"embedded"`

	// Submitter identity, denormalized onto the record at creation time.
	Name       string `gorm:"size:255;not null" json:"name"`
	StudentID  string `gorm:"size:50;not null;index" json:"student_id"`
	Supervisor string `gorm:"size:255" json:"supervisor"`
	Phone      string `gorm:"size:50" json:"phone"`

	IsPaid        bool  `gorm:"default:false" json:"is_paid"`
	PaidEditCount int   `gorm:"default:0" json:"paid_edit_count"`
	Timestamp     int64 `gorm:"not null" json:"timestamp"` // creation instant, epoch millis

	Status          Status  `gorm:"size:20;default:'box'" json:"status"`
	RejectionReason *string `gorm:"size:500" json:"rejection_reason,omitempty"`

	SurveyAnswers SurveyAnswers `gorm:"embedded;embeddedPrefix:survey_" json:"survey_answers"`
}

// TableName overrides the table name
func (SubmissionRecord) TableName() string {
	return "reimbursement_records"
}
