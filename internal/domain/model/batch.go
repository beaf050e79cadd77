package model

import "time"

// Batch is the result of one successful generation. Only the session's
// current batch may receive images.
type Batch struct {
	ID            string              `json:"id"`
	SessionID     string              `json:"-"`
	Request       GenerationRequest   `json:"request"`
	Questions     []GeneratedQuestion `json:"questions"`
	CreatedAt     time.Time           `json:"created_at"`
	ImagesPending bool                `json:"images_pending"`
}

// Clone returns a deep copy so callers can mutate questions freely.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Questions = make([]GeneratedQuestion, len(b.Questions))
	for i, q := range b.Questions {
		q.Tasks = append([]Task(nil), q.Tasks...)
		q.Answers = append([]Answer(nil), q.Answers...)
		cp.Questions[i] = q
	}
	return &cp
}
