// Package event publishes CV lifecycle changes for downstream consumers.
package event

import (
	"context"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/model"
)

const (
	TypeUploaded  = "uploaded"
	TypeParsed    = "parsed"
	TypeOptimized = "optimized"
	TypeDeleted   = "deleted"
)

type CVStatusEvent struct {
	Type       string         `json:"type"`
	CVID       string         `json:"cvId"`
	UserID     string         `json:"userId"`
	Status     model.CVStatus `json:"status,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

func NewCVStatusEvent(typ string, rec *model.CVRecord) CVStatusEvent {
	return CVStatusEvent{
		Type:       typ,
		CVID:       rec.ID,
		UserID:     rec.UserID,
		Status:     rec.Status,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt CVStatusEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, CVStatusEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
