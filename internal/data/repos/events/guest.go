package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type GuestRepo interface {
	Create(dbc dbctx.Context, g *types.Guest) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Guest, error)
	// ListByEvent orders guests by first then last name.
	ListByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.Guest, error)
	ListUninvited(dbc dbctx.Context, eventID uuid.UUID) ([]*types.Guest, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	MarkInvitationSent(dbc dbctx.Context, ids []uuid.UUID) error
}

type guestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuestRepo(db *gorm.DB, baseLog *logger.Logger) GuestRepo {
	return &guestRepo{db: db, log: baseLog.With("repo", "GuestRepo")}
}

func (r *guestRepo) Create(dbc dbctx.Context, g *types.Guest) error {
	if g == nil {
		return nil
	}
	return dbc.DB(r.db).Create(g).Error
}

func (r *guestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Guest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Guest
	if err := dbc.DB(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *guestRepo) ListByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.Guest, error) {
	var out []*types.Guest
	err := dbc.DB(r.db).
		Where("event_id = ?", eventID).
		Order("first_name ASC").
		Order("last_name ASC").
		Find(&out).Error
	return out, err
}

func (r *guestRepo) ListUninvited(dbc dbctx.Context, eventID uuid.UUID) ([]*types.Guest, error) {
	var out []*types.Guest
	err := dbc.DB(r.db).
		Where("event_id = ? AND invitation_sent = ?", eventID, false).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *guestRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Guest{}).Where("id = ?", id).Updates(updates).Error
}

func (r *guestRepo) MarkInvitationSent(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Guest{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"invitation_sent": true, "updated_at": time.Now().UTC()}).Error
}
