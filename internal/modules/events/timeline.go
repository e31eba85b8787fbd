package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type AddTimelineItemInput struct {
	OwnerID      uuid.UUID
	EventID      uuid.UUID
	Title        string
	Description  string
	StartTime    time.Time
	Duration     *int
	Category     string
	IsCompleted  bool
	DisplayOrder int
}

func (u Usecases) AddTimelineItem(ctx context.Context, in AddTimelineItemInput) (*types.TimelineItem, error) {
	ev, err := u.OwnedEvent(ctx, in.OwnerID, in.EventID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("missing_title", "title is required")
	}
	if in.StartTime.IsZero() {
		return nil, apierr.Validation("missing_start_time", "startTime is required")
	}
	if in.Duration != nil && *in.Duration < 0 {
		return nil, apierr.Validation("invalid_duration", "duration cannot be negative")
	}

	item := &types.TimelineItem{
		ID:           uuid.New(),
		EventID:      ev.ID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		StartTime:    in.StartTime.UTC(),
		Duration:     in.Duration,
		Category:     strings.TrimSpace(in.Category),
		IsCompleted:  in.IsCompleted,
		DisplayOrder: in.DisplayOrder,
	}
	if err := u.deps.Timeline.Create(dbctx.Context{Ctx: ctx}, item); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_timeline_item_failed", err)
	}
	return item, nil
}

func (u Usecases) ListTimeline(ctx context.Context, eventID uuid.UUID) ([]*types.TimelineItem, error) {
	if _, err := u.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	out, err := u.deps.Timeline.ListByEvent(dbctx.Context{Ctx: ctx}, eventID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_timeline_failed", err)
	}
	return out, nil
}
