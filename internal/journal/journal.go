// Package journal persists an audit trail of session events to
// PostgreSQL. It is write-only from the live session's point of view:
// presentation state is never restored from it.
package journal

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/slidecast/presentation-service/pkg/model"
)

// Journal implements service.EventRecorder on top of GORM.
type Journal struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates the journal.
func New(db *gorm.DB, log *zap.Logger) *Journal {
	return &Journal{db: db, log: log}
}

// RecordCommand stores one handled command. Failures are logged and
// swallowed: journaling must never disturb the live session.
func (j *Journal) RecordCommand(ctx context.Context, clientID string, cmd model.Command, result model.Notification) {
	event := &CommandEvent{
		ClientID:   clientID,
		Command:    string(cmd.Command),
		Slide:      cmd.Slide,
		ResultType: string(result.Type),
	}
	if result.State != nil {
		event.ResultPhase = string(result.State.Phase)
		event.TotalDurationMS = time.Duration(result.State.Accrued).Milliseconds()
	}
	if err := j.db.WithContext(ctx).Create(event).Error; err != nil {
		j.log.Warn("journal: record command failed", zap.Error(err))
	}
}

// RecordConnection stores a connect row, or stamps the matching open row
// on disconnect.
func (j *Journal) RecordConnection(ctx context.Context, clientID, name string, connected bool) {
	if connected {
		row := &ClientConnection{
			ClientID:    clientID,
			Name:        name,
			ConnectedAt: time.Now(),
		}
		if err := j.db.WithContext(ctx).Create(row).Error; err != nil {
			j.log.Warn("journal: record connection failed", zap.Error(err))
		}
		return
	}

	now := time.Now()
	err := j.db.WithContext(ctx).
		Model(&ClientConnection{}).
		Where("client_id = ? AND disconnected_at IS NULL", clientID).
		Update("disconnected_at", now).Error
	if err != nil {
		j.log.Warn("journal: record disconnection failed", zap.Error(err))
	}
}
