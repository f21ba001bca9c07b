package audit

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/audit"
	"go.uber.org/zap"
)

// ZapRecorder writes audit records to the structured log only. Used in
// development and as a fallback when no database recorder is wired.
type ZapRecorder struct {
	logger *zap.Logger
}

// NewZapRecorder creates a log-only audit recorder
func NewZapRecorder(logger *zap.Logger) *ZapRecorder {
	return &ZapRecorder{logger: logger.Named("audit")}
}

// Record implements audit.Recorder
func (r *ZapRecorder) Record(ctx context.Context, record *audit.Record) {
	if record == nil {
		return
	}
	r.logger.Info("audit",
		zap.String("tenant_id", record.TenantID.String()),
		zap.String("action", string(record.Action)),
		zap.String("entity_type", record.EntityType),
		zap.String("entity_id", record.EntityID.String()),
		zap.String("detail", record.Detail),
		zap.Time("occurred_at", record.OccurredAt),
	)
}

var _ audit.Recorder = (*ZapRecorder)(nil)
