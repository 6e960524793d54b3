package calendar

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// DistinctDates folds entry timestamps into the ascending set of days, in loc,
// on which at least one of them falls. Each day appears once.
func DistinctDates(times []time.Time, loc *time.Location) []Date {
	dates := lo.Uniq(lo.Map(times, func(t time.Time, _ int) Date {
		return Of(t, loc)
	}))
	slices.SortFunc(dates, Date.Compare)
	return dates
}

// Strings renders an index as YYYY-MM-DD strings.
func Strings(index []Date) []string {
	return lo.Map(index, func(d Date, _ int) string {
		return d.String()
	})
}

// ParseAll is the inverse of Strings.
func ParseAll(values []string) ([]Date, error) {
	dates := make([]Date, 0, len(values))
	for _, v := range values {
		d, err := Parse(v)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}
