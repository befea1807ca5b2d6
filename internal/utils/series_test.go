// internal/utils/series_test.go
package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insurance-solutions/vims-backend/internal/models"
)

func seriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SeriesCounter{}))
	return db
}

func TestNextInSeriesFormatAndIncrement(t *testing.T) {
	db := seriesTestDB(t)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	first, err := NextInSeries(db, "POL", now)
	require.NoError(t, err)
	assert.Equal(t, "POL-2026-00001", first)

	second, err := NextInSeries(db, "POL", now)
	require.NoError(t, err)
	assert.Equal(t, "POL-2026-00002", second)
}

func TestNextInSeriesIsPerPrefixAndYear(t *testing.T) {
	db := seriesTestDB(t)
	in2026 := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	in2027 := in2026.AddDate(1, 0, 0)

	pol, err := NextInSeries(db, "POL", in2026)
	require.NoError(t, err)
	clm, err := NextInSeries(db, "CLM", in2026)
	require.NoError(t, err)
	rollover, err := NextInSeries(db, "POL", in2027)
	require.NoError(t, err)

	assert.Equal(t, "POL-2026-00001", pol)
	assert.Equal(t, "CLM-2026-00001", clm)
	assert.Equal(t, "POL-2027-00001", rollover)
}

func TestNextInSeriesSurvivesManyDraws(t *testing.T) {
	db := seriesTestDB(t)
	now := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	var last string
	for i := 1; i <= 150; i++ {
		value, err := NextInSeries(db, "PRP", now)
		require.NoError(t, err)
		last = value
	}
	assert.Equal(t, fmt.Sprintf("PRP-2026-%05d", 150), last)
}
