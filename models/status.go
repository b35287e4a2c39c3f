package models

// Status is a stage in the reimbursement approval pipeline. Records move
// box → han → assistant → office → success, with rejected reachable from
// any stage. Progression is admin-driven, never automatic.
type Status string

const (
	StatusBox       Status = "box"       // 发票盒
	StatusHan       Status = "han"       // 韩老师
	StatusAssistant Status = "assistant" // 财务助管
	StatusOffice    Status = "office"    // 财务处
	StatusSuccess   Status = "success"
	StatusRejected  Status = "rejected"
)

// AllStatuses lists every status a record can hold.
var AllStatuses = []Status{StatusBox, StatusHan, StatusAssistant, StatusOffice, StatusSuccess, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}
