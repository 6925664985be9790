package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentdesk/internal/models"
)

func TestSortByRankThenDate(t *testing.T) {
	newer := day(2025, time.May, 20)
	older := day(2025, time.May, 1)

	alerts := []models.Alert{
		{ID: "low-new", Priority: models.PriorityLow, ReferenceDate: newer},
		{ID: "high-old", Priority: models.PriorityHigh, ReferenceDate: older},
		{ID: "med", Priority: models.PriorityMedium, ReferenceDate: newer},
		{ID: "high-new", Priority: models.PriorityHigh, ReferenceDate: newer},
	}
	Sort(alerts)

	got := make([]string, len(alerts))
	for i, a := range alerts {
		got[i] = a.ID
	}
	assert.Equal(t, []string{"high-new", "high-old", "med", "low-new"}, got)
}

func TestSortIsStableOnTies(t *testing.T) {
	date := day(2025, time.May, 20)
	alerts := []models.Alert{
		{ID: "first", Priority: models.PriorityMedium, ReferenceDate: date},
		{ID: "second", Priority: models.PriorityMedium, ReferenceDate: date},
		{ID: "third", Priority: models.PriorityMedium, ReferenceDate: date},
	}
	Sort(alerts)

	assert.Equal(t, "first", alerts[0].ID)
	assert.Equal(t, "second", alerts[1].ID)
	assert.Equal(t, "third", alerts[2].ID)
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 3, models.PriorityHigh.Rank())
	assert.Equal(t, 2, models.PriorityMedium.Rank())
	assert.Equal(t, 1, models.PriorityLow.Rank())
}
