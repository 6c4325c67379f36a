package application

import (
	"math"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// Aggregate averages the submission times of reqs and labels the mean as a
// duration relative to now. An empty slice yields a summary with Empty set
// instead of a division by zero.
func Aggregate(reqs []model.ReviewRequest, table model.SeverityTable, now time.Time) model.AgeSummary {
	if len(reqs) == 0 {
		return model.AgeSummary{Severity: model.SeverityNeutral, Empty: true}
	}

	var sum float64
	for _, r := range reqs {
		sum += float64(r.Time.Unix()) + float64(r.Time.Nanosecond())/1e9
	}
	mean := sum / float64(len(reqs))

	sec, frac := math.Modf(mean)
	meanTime := time.Unix(int64(sec), int64(frac*1e9))
	age := now.Sub(meanTime)

	return model.AgeSummary{
		Label:    RelativeDuration(meanTime, now),
		Severity: table.Classify(age),
		MeanAge:  age,
	}
}
