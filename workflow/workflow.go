package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/flavorlab/reimburse-assistant/validation"
	"gorm.io/gorm"
)

// Service owns the approval state machine and the survey-queue
// coordination around submission records. It does not enforce
// authorization itself: callers pass a privileged flag where it matters
// and are trusted to have checked the actor's role.
type Service struct {
	db       *gorm.DB
	orgName  string
	orgTaxID string
	surveys  *SurveyCoordinator
}

func NewService(db *gorm.DB, orgName, orgTaxID string) *Service {
	return &Service{
		db:       db,
		orgName:  orgName,
		orgTaxID: orgTaxID,
		surveys:  NewSurveyCoordinator(),
	}
}

// Surveys exposes the coordinator for handlers polling the current question.
func (s *Service) Surveys() *SurveyCoordinator {
	return s.surveys
}

// transitions enumerates every legal source → target pair. Progression is
// admin-driven, so any state may move to any other state; self-transitions
// are the only pairs left out.
var transitions = map[models.Status][]models.Status{
	models.StatusBox:       {models.StatusHan, models.StatusAssistant, models.StatusOffice, models.StatusSuccess, models.StatusRejected},
	models.StatusHan:       {models.StatusBox, models.StatusAssistant, models.StatusOffice, models.StatusSuccess, models.StatusRejected},
	models.StatusAssistant: {models.StatusBox, models.StatusHan, models.StatusOffice, models.StatusSuccess, models.StatusRejected},
	models.StatusOffice:    {models.StatusBox, models.StatusHan, models.StatusAssistant, models.StatusSuccess, models.StatusRejected},
	models.StatusSuccess:   {models.StatusBox, models.StatusHan, models.StatusAssistant, models.StatusOffice, models.StatusRejected},
	models.StatusRejected:  {models.StatusBox, models.StatusHan, models.StatusAssistant, models.StatusOffice, models.StatusSuccess},
}

// CanTransition reports whether the table allows from → to.
func CanTransition(from, to models.Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ListRecords returns the given owner's records, newest first.
func (s *Service) ListRecords(studentID string) ([]models.SubmissionRecord, error) {
	var records []models.SubmissionRecord
	if err := s.db.Where("student_id = ?", studentID).Order("timestamp desc").Find(&records).Error; err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	return records, nil
}

// ListAllRecords returns every record, newest first. Privileged use only;
// the caller checks the actor's role.
func (s *Service) ListAllRecords() ([]models.SubmissionRecord, error) {
	var records []models.SubmissionRecord
	if err := s.db.Order("timestamp desc").Find(&records).Error; err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	return records, nil
}

// GetRecord loads a single record by id.
func (s *Service) GetRecord(id uint) (*models.SubmissionRecord, error) {
	var record models.SubmissionRecord
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, &StoreError{Op: "query", Err: err}
	}
	return &record, nil
}

// CreateSubmission validates the invoice against organizational rules,
// persists a new record at the first pipeline stage and opens the owner's
// compliance survey session. On any failure nothing is persisted, so the
// caller can keep the upload entry around for a retry.
func (s *Service) CreateSubmission(invoice models.InvoiceData, profile models.UserProfile, isPaid bool) (*models.SubmissionRecord, error) {
	if !validation.IsPayeeValid(invoice, s.orgName, s.orgTaxID) {
		return nil, &ValidationError{Reason: fmt.Sprintf("发票抬头错误！购买方必须是：%s", s.orgName)}
	}

	var existing []models.SubmissionRecord
	if err := s.db.Find(&existing).Error; err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	if validation.IsDuplicate(invoice.InvoiceNumber, existing) {
		return nil, &ValidationError{Reason: fmt.Sprintf("发票号码 %s 已存在！", invoice.InvoiceNumber)}
	}

	record := models.SubmissionRecord{
		InvoiceData:   invoice,
		Name:          profile.Name,
		StudentID:     profile.StudentID,
		Supervisor:    profile.Supervisor,
		Phone:         profile.Phone,
		IsPaid:        isPaid,
		PaidEditCount: 0,
		Timestamp:     time.Now().UnixMilli(),
		Status:        models.StatusBox,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, &StoreError{Op: "insert", Err: err}
	}

	queue := []models.SurveyType{models.SurveyDoubleSignature}
	if isPaid {
		queue = append(queue, models.SurveyPaymentRecord)
	}
	s.surveys.Begin(profile.StudentID, record.ID, queue)

	return &record, nil
}

// AdvanceStatus moves a record to newStatus per the transition table. A
// transition to rejected requires a non-empty reason; any other target
// clears the stored reason. The caller is trusted to have verified the
// actor is privileged.
func (s *Service) AdvanceStatus(id uint, newStatus models.Status, reason string) (*models.SubmissionRecord, error) {
	record, err := s.GetRecord(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(record.Status, newStatus) {
		return nil, &InvalidTransitionError{From: string(record.Status), To: string(newStatus)}
	}

	var storedReason *string
	if newStatus == models.StatusRejected {
		if reason == "" {
			return nil, ErrReasonRequired
		}
		storedReason = &reason
	}

	updates := map[string]interface{}{
		"status":           newStatus,
		"rejection_reason": storedReason,
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, &StoreError{Op: "update", Err: err}
	}

	record.Status = newStatus
	record.RejectionReason = storedReason
	return record, nil
}

// TogglePaidStatus flips a record's isPaid flag. Non-privileged actors get
// a single edit, enforced against paidEditCount; privileged actors are
// exempt. A flip to paid re-opens the owner's survey session with the
// payment-record question, replacing whatever was queued.
//
// The update is conditional on the edit count read beforehand, so two
// racing toggles cannot both count as the one allowed edit.
func (s *Service) TogglePaidStatus(id uint, privileged bool) (*models.SubmissionRecord, error) {
	record, err := s.GetRecord(id)
	if err != nil {
		return nil, err
	}
	if record.PaidEditCount >= 1 && !privileged {
		return nil, ErrEditLimit
	}

	becomingPaid := !record.IsPaid
	updates := map[string]interface{}{
		"is_paid":         becomingPaid,
		"paid_edit_count": record.PaidEditCount + 1,
	}
	res := s.db.Model(&models.SubmissionRecord{}).
		Where("id = ? AND paid_edit_count = ?", id, record.PaidEditCount).
		Updates(updates)
	if res.Error != nil {
		return nil, &StoreError{Op: "update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	record.IsPaid = becomingPaid
	record.PaidEditCount++

	if becomingPaid {
		s.surveys.Begin(record.StudentID, record.ID, []models.SurveyType{models.SurveyPaymentRecord})
	}
	return record, nil
}
