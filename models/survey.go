package models

// SurveyType identifies a compliance question that can be queued for a
// record after submission or a paid-status change.
type SurveyType string

const (
	// SurveyDoubleSignature asks whether the invoice carries signatures
	// from two or more teachers.
	SurveyDoubleSignature SurveyType = "double_signature"
	// SurveyPaymentRecord asks whether a paid invoice has its payment
	// record attached.
	SurveyPaymentRecord SurveyType = "payment_record"
)

// Question returns the user-facing prompt for the survey item.
func (t SurveyType) Question() string {
	if t == SurveyPaymentRecord {
		return "已付发票是否附上支付记录？"
	}
	return "发票是否由2名以上的老师签字？"
}
