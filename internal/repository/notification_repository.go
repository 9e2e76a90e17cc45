package repository

import (
	"context"

	"github.com/fadilmartias/talent-match/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, profileID uuid.UUID, limit int) ([]model.Notification, error) {
	var out []model.Notification
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
