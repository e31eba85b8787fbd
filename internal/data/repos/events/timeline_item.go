package events

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type TimelineItemRepo interface {
	Create(dbc dbctx.Context, item *types.TimelineItem) error
	ListByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.TimelineItem, error)
}

type timelineItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineItemRepo(db *gorm.DB, baseLog *logger.Logger) TimelineItemRepo {
	return &timelineItemRepo{db: db, log: baseLog.With("repo", "TimelineItemRepo")}
}

func (r *timelineItemRepo) Create(dbc dbctx.Context, item *types.TimelineItem) error {
	if item == nil {
		return nil
	}
	return dbc.DB(r.db).Create(item).Error
}

func (r *timelineItemRepo) ListByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.TimelineItem, error) {
	var out []*types.TimelineItem
	err := dbc.DB(r.db).
		Where("event_id = ?", eventID).
		Order("start_time ASC").
		Order("display_order ASC").
		Find(&out).Error
	return out, err
}
