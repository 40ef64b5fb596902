// Package period computes the default reporting period for an ingest run.
// The KBA publishes each FZ 10 report in the weeks after the month it covers,
// so an unspecified period defaults to the previous calendar month.
package period

import (
	"time"

	"github.com/kbadata/fz10/internal/types"
)

// Previous returns the calendar month before the given time.
func Previous(now time.Time) types.Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, 0, -1)
	return types.Period{Year: prev.Year(), Month: int(prev.Month())}
}

// Default returns the period to ingest when no flags are given: the previous
// calendar month relative to the current wall clock.
func Default() types.Period {
	return Previous(time.Now())
}

// Resolve combines the year/month flags with the default. A zero value for
// either flag means "use the default"; the flags are only honored together,
// since a bare --year or bare --month is ambiguous.
func Resolve(year, month int) types.Period {
	if year != 0 && month != 0 {
		return types.Period{Year: year, Month: month}
	}
	return Default()
}
