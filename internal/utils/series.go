// internal/utils/series.go
package utils

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/models"
)

// NextInSeries returns the next identifier for a yearly naming series, e.g.
// POL-2026-00001. The counter row is locked for update, so series values are
// unique even under concurrent issuance; call inside the transaction that
// persists the numbered record so gaps only appear on rollback.
func NextInSeries(tx *gorm.DB, prefix string, now time.Time) (string, error) {
	key := fmt.Sprintf("%s-%d", prefix, now.Year())

	var counter models.SeriesCounter
	err := LockForUpdate(tx).
		Where("key = ?", key).
		First(&counter).Error
	if err == gorm.ErrRecordNotFound {
		counter = models.SeriesCounter{Key: key}
		if err := tx.Create(&counter).Error; err != nil {
			return "", fmt.Errorf("failed to create series counter %s: %w", key, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to lock series counter %s: %w", key, err)
	}

	counter.Current++
	if err := tx.Model(&models.SeriesCounter{}).
		Where("key = ?", key).
		Update("current", counter.Current).Error; err != nil {
		return "", fmt.Errorf("failed to advance series counter %s: %w", key, err)
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, now.Year(), counter.Current), nil
}
