package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/xtractpay/xtractpay/internal/activity"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) CreateEntry(e *activity.Entry) error {
	if err := r.db.Create(e).Error; err != nil {
		return fmt.Errorf("failed to create activity entry: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListEntries(limit int) ([]*activity.Entry, error) {
	var entries []*activity.Entry
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}

func (r *ActivityRepository) CreateAlert(a *activity.Alert) error {
	if err := r.db.Create(a).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListAlerts(limit int) ([]*activity.Alert, error) {
	var alerts []*activity.Alert
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
