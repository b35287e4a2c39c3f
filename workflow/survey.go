package workflow

import (
	"sync"

	"github.com/flavorlab/reimburse-assistant/models"
)

// SurveyCoordinator tracks pending compliance questions. Each owner has
// at most one active session, tied to a single record; opening a new
// session replaces the owner's previous queue wholesale, even if it still
// had questions pending. The queue only ever exposes its front element.
type SurveyCoordinator struct {
	mu       sync.Mutex
	sessions map[string]*surveySession
}

type surveySession struct {
	recordID uint
	queue    []models.SurveyType
}

func NewSurveyCoordinator() *SurveyCoordinator {
	return &SurveyCoordinator{sessions: make(map[string]*surveySession)}
}

// Begin opens a survey session for the owner, discarding any prior one.
func (c *SurveyCoordinator) Begin(owner string, recordID uint, queue []models.SurveyType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(queue) == 0 {
		delete(c.sessions, owner)
		return
	}
	c.sessions[owner] = &surveySession{recordID: recordID, queue: queue}
}

// Current returns the owner's front-of-queue question, if any.
func (c *SurveyCoordinator) Current(owner string) (recordID uint, question models.SurveyType, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, found := c.sessions[owner]
	if !found || len(sess.queue) == 0 {
		return 0, "", false
	}
	return sess.recordID, sess.queue[0], true
}

// advance drops the front item after a successful answer and clears the
// session once the queue is empty.
func (c *SurveyCoordinator) advance(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, found := c.sessions[owner]
	if !found {
		return
	}
	sess.queue = sess.queue[1:]
	if len(sess.queue) == 0 {
		delete(c.sessions, owner)
	}
}

// AnswerSurvey records the owner's answer to their front-of-queue
// question, merging it into the active record's answers without touching
// unrelated keys. The question is only dequeued once the answer has been
// persisted; on a store failure the same question stays at the front so
// the owner can retry.
func (s *Service) AnswerSurvey(owner string, answer bool) (*models.SubmissionRecord, error) {
	recordID, question, ok := s.surveys.Current(owner)
	if !ok {
		return nil, ErrNoActiveSurvey
	}

	record, err := s.GetRecord(recordID)
	if err != nil {
		return nil, err
	}

	column := "survey_has_double_signature"
	if question == models.SurveyPaymentRecord {
		column = "survey_has_payment_record"
	}
	if err := s.db.Model(record).Update(column, answer).Error; err != nil {
		return nil, &StoreError{Op: "update", Err: err}
	}

	if question == models.SurveyPaymentRecord {
		record.SurveyAnswers.HasPaymentRecord = &answer
	} else {
		record.SurveyAnswers.HasDoubleSignature = &answer
	}
	s.surveys.advance(owner)
	return record, nil
}
