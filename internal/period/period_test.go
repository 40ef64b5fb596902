package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kbadata/fz10/internal/types"
)

func TestPrevious(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want types.Period
	}{
		{
			name: "mid-year",
			now:  time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC),
			want: types.Period{Year: 2025, Month: 6},
		},
		{
			name: "january wraps to december of the previous year",
			now:  time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
			want: types.Period{Year: 2025, Month: 12},
		},
		{
			name: "first day of the month",
			now:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			want: types.Period{Year: 2025, Month: 2},
		},
		{
			name: "last day of the month",
			now:  time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),
			want: types.Period{Year: 2025, Month: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Previous(tt.now))
		})
	}
}

func TestResolve(t *testing.T) {
	// Both flags set: honored as given.
	assert.Equal(t, types.Period{Year: 2024, Month: 11}, Resolve(2024, 11))

	// A bare year or bare month falls back to the default period.
	def := Default()
	assert.Equal(t, def, Resolve(2024, 0))
	assert.Equal(t, def, Resolve(0, 11))
	assert.Equal(t, def, Resolve(0, 0))
}

func TestDefaultIsValid(t *testing.T) {
	assert.True(t, Default().Valid())
}
