package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mfigueroa/spotter/internal/model"
)

// PromisingSnapshot is one row in the notification history: a funding request
// that matched one of a user's configurations at a point in time.
type PromisingSnapshot struct {
	UserID            string          `gorm:"column:user_id"`
	FundingRequestID  int64           `gorm:"column:funding_request_id"`
	CreditType        string          `gorm:"column:credit_type"`
	Score             decimal.Decimal `gorm:"column:score;type:Decimal(18,4)"`
	IRR               decimal.Decimal `gorm:"column:irr;type:Decimal(18,4)"`
	MonthlyProfitRate decimal.Decimal `gorm:"column:monthly_profit_rate;type:Decimal(18,4)"`
	DurationDays      int             `gorm:"column:duration_days"`
	MaximumInvestment int64           `gorm:"column:maximum_investment"`
	NotifiedAt        time.Time       `gorm:"column:notified_at"`
}

func (PromisingSnapshot) TableName() string {
	return "promising_snapshot"
}

// NewPromisingSnapshot flattens a funding request into its history row.
func NewPromisingSnapshot(userID string, request model.FundingRequest, notifiedAt time.Time) *PromisingSnapshot {
	return &PromisingSnapshot{
		UserID:            userID,
		FundingRequestID:  request.ID,
		CreditType:        string(request.CreditType),
		Score:             request.Score,
		IRR:               request.IRR,
		MonthlyProfitRate: request.MonthlyProfitRate(),
		DurationDays:      request.Duration.Days(),
		MaximumInvestment: request.MaximumInvestment,
		NotifiedAt:        notifiedAt,
	}
}

type SnapshotRepository interface {
	CreateSnapshot(*PromisingSnapshot) error
	CreateSnapshots([]*PromisingSnapshot) error
}

type gormSnapshotRepository struct {
	db *gorm.DB
}

func NewGormSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &gormSnapshotRepository{db: db}
}

func (r *gormSnapshotRepository) CreateSnapshot(snapshot *PromisingSnapshot) error {
	return r.db.Create(snapshot).Error
}

func (r *gormSnapshotRepository) CreateSnapshots(snapshots []*PromisingSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.Create(snapshots).Error
}
