package events

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, ev *types.Event) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error)
	// ListByUser returns the owner's events, latest event date first.
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Event, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(dbc dbctx.Context, ev *types.Event) error {
	if ev == nil {
		return nil
	}
	return dbc.DB(r.db).Create(ev).Error
}

func (r *eventRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Event
	if err := dbc.DB(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *eventRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Event, error) {
	var out []*types.Event
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("event_date DESC").
		Find(&out).Error
	return out, err
}
