package mysql

import (
	"context"

	"Social_Hub/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func (r *OutboxRepository) Pending(ctx context.Context, batch, maxRetry int) ([]model.OutboxEvent, error) {
	var list []model.OutboxEvent
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("created_at ASC").Order("id ASC").
		Limit(batch).
		Find(&list).Error; err != nil {
		return nil, translate(err, "outbox")
	}
	return list, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

// MarkFailed records a failed delivery; the event is retried until it hits
// the relayer's retry limit.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}
