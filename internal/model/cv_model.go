package model

import (
	"fmt"
	"time"
)

type CVStatus string

const (
	CVStatusProcessing CVStatus = "processing"
	CVStatusCompleted  CVStatus = "completed"
	CVStatusFailed     CVStatus = "failed"
)

// allowed lists every legal status move, self-moves included.
var allowed = map[CVStatus][]CVStatus{
	CVStatusProcessing: {CVStatusProcessing, CVStatusCompleted},
	CVStatusCompleted:  {CVStatusCompleted},
	CVStatusFailed:     {CVStatusFailed, CVStatusCompleted},
}

func CanTransition(from, to CVStatus) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

type CVRecord struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	FileName      string       `json:"fileName"`
	UploadDate    time.Time    `json:"uploadDate"`
	OriginalText  string       `json:"originalText"`
	ParsedData    *ParsedCV    `json:"parsedData,omitempty"`
	OptimizedData *OptimizedCV `json:"optimizedData,omitempty"`
	Status        CVStatus     `json:"status"`
	BlobURL       string       `json:"blobUrl,omitempty"`
}

// Transition moves the record to the given status or reports an illegal move.
func (r *CVRecord) Transition(to CVStatus) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("illegal status transition %s -> %s", r.Status, to)
	}
	r.Status = to
	return nil
}
