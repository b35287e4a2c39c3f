package uploads

import (
	"sync"

	"github.com/flavorlab/reimburse-assistant/models"
	"github.com/google/uuid"
)

// State is the lifecycle of an uploaded file awaiting recognition.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// ProcessingFile is an ephemeral upload entry. It lives in memory only:
// created on upload, destroyed on removal or once converted into a
// submission record. Raw bytes are held so a completed entry can be
// retried after a failed submission.
type ProcessingFile struct {
	ID            string              `json:"id"`
	Owner         string              `json:"-"`
	Filename      string              `json:"filename"`
	MimeType      string              `json:"mime_type"`
	Data          []byte              `json:"-"`
	Status        State               `json:"status"`
	ExtractedData *models.InvoiceData `json:"extracted_data,omitempty"`
	IsBuyerValid  *bool               `json:"is_buyer_valid,omitempty"`
	IsDuplicate   *bool               `json:"is_duplicate,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// Registry holds in-flight uploads. Entries are processed independently
// and concurrently; the registry imposes no queueing or throttling.
type Registry struct {
	mu    sync.RWMutex
	files map[string]*ProcessingFile
}

func NewRegistry() *Registry {
	return &Registry{files: make(map[string]*ProcessingFile)}
}

// Add registers a new pending upload and returns a snapshot of it.
func (r *Registry) Add(owner, filename, mimeType string, data []byte) ProcessingFile {
	entry := &ProcessingFile{
		ID:       uuid.NewString(),
		Owner:    owner,
		Filename: filename,
		MimeType: mimeType,
		Data:     data,
		Status:   StatePending,
	}
	r.mu.Lock()
	r.files[entry.ID] = entry
	r.mu.Unlock()
	return *entry
}

// Get returns a snapshot of the entry.
func (r *Registry) Get(id string) (ProcessingFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.files[id]
	if !ok {
		return ProcessingFile{}, false
	}
	return *entry, true
}

// ListByOwner returns snapshots of the owner's entries.
func (r *Registry) ListByOwner(owner string) []ProcessingFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]ProcessingFile, 0)
	for _, entry := range r.files {
		if entry.Owner == owner {
			result = append(result, *entry)
		}
	}
	return result
}

// Remove deletes the entry. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[id]
	delete(r.files, id)
	return ok
}

// MarkProcessing flags the entry as handed to the recognition service.
func (r *Registry) MarkProcessing(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.files[id]; ok {
		entry.Status = StateProcessing
	}
}

// Complete stores the recognition result and its validation annotations.
func (r *Registry) Complete(id string, invoice models.InvoiceData, buyerValid, duplicate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.files[id]
	if !ok {
		return
	}
	entry.Status = StateCompleted
	entry.ExtractedData = &invoice
	entry.IsBuyerValid = &buyerValid
	entry.IsDuplicate = &duplicate
}

// Fail records a per-file recognition failure. Other uploads are unaffected.
func (r *Registry) Fail(id string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.files[id]; ok {
		entry.Status = StateError
		entry.Error = message
	}
}
