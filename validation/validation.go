package validation

import (
	"strings"

	"github.com/flavorlab/reimburse-assistant/models"
)

// IsPayeeValid reports whether the invoice names the organization as its
// buyer: the buyer name must contain orgName and the normalized buyer tax
// id must contain the normalized orgTaxID.
func IsPayeeValid(invoice models.InvoiceData, orgName, orgTaxID string) bool {
	if !strings.Contains(invoice.BuyerName, orgName) {
		return false
	}
	return strings.Contains(normalize(invoice.BuyerTaxID), normalize(orgTaxID))
}

// IsDuplicate reports whether the candidate invoice number already exists
// among the given records. Comparison is trimmed and case-insensitive.
// The check runs against the current snapshot only; two concurrent
// submissions with the same number can both pass it.
func IsDuplicate(invoiceNumber string, existing []models.SubmissionRecord) bool {
	candidate := normalize(invoiceNumber)
	for _, r := range existing {
		if normalize(r.InvoiceNumber) == candidate {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
