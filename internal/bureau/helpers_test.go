package bureau

import (
	"time"

	"github.com/Dan9191/bureau-service/internal/models"
	"github.com/Dan9191/bureau-service/internal/utils"
)

type memTradelines map[int64][]models.RawTradeline

func (m memTradelines) Tradelines(crn int64) []models.RawTradeline {
	return m[crn]
}

type memFeatures map[int64]map[string]string

func (m memFeatures) FeatureRow(crn int64) (map[string]string, bool) {
	row, ok := m[crn]
	return row, ok
}

var fixedNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func date(s string) *time.Time {
	return utils.ParseDate(s)
}
