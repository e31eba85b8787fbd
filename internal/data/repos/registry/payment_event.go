package registry

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type PaymentEventRepo interface {
	Exists(dbc dbctx.Context, providerEventID string) (bool, error)
	Create(dbc dbctx.Context, ev *types.PaymentEvent) error
}

type paymentEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentEventRepo(db *gorm.DB, baseLog *logger.Logger) PaymentEventRepo {
	return &paymentEventRepo{db: db, log: baseLog.With("repo", "PaymentEventRepo")}
}

func (r *paymentEventRepo) Exists(dbc dbctx.Context, providerEventID string) (bool, error) {
	providerEventID = strings.TrimSpace(providerEventID)
	if providerEventID == "" {
		return false, nil
	}
	var count int64
	err := dbc.DB(r.db).Model(&types.PaymentEvent{}).
		Where("provider_event_id = ?", providerEventID).
		Count(&count).Error
	return count > 0, err
}

func (r *paymentEventRepo) Create(dbc dbctx.Context, ev *types.PaymentEvent) error {
	if ev == nil {
		return nil
	}
	return dbc.DB(r.db).Create(ev).Error
}
