package audit

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/audit"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormRecorder persists audit records to the database. Writes happen
// outside the business transaction; a failed write is logged and
// dropped.
type GormRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRecorder creates a database-backed audit recorder
func NewGormRecorder(db *gorm.DB, logger *zap.Logger) *GormRecorder {
	return &GormRecorder{
		db:     db,
		logger: logger.Named("audit"),
	}
}

// Record implements audit.Recorder
func (r *GormRecorder) Record(ctx context.Context, record *audit.Record) {
	if record == nil {
		return
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logger.Error("failed to persist audit record",
			zap.String("action", string(record.Action)),
			zap.String("entity_id", record.EntityID.String()),
			zap.Error(err),
		)
	}
}

var _ audit.Recorder = (*GormRecorder)(nil)
