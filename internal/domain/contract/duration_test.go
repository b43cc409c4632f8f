package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sikontrak/backend/internal/domain/shared"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDuration(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		end        time.Time
		wantDays   int
		wantMonths int
		wantYears  int
	}{
		{
			name:       "rounds up within seven days of next month boundary",
			start:      date(2024, time.January, 1),
			end:        date(2025, time.June, 25),
			wantDays:   541,
			wantMonths: 18,
			wantYears:  1,
		},
		{
			name:       "does not round up outside the window",
			start:      date(2024, time.January, 1),
			end:        date(2025, time.June, 15),
			wantDays:   531,
			wantMonths: 17,
			wantYears:  1,
		},
		{
			name:       "exact year",
			start:      date(2024, time.March, 1),
			end:        date(2025, time.March, 1),
			wantDays:   365,
			wantMonths: 12,
			wantYears:  1,
		},
		{
			name:       "same day",
			start:      date(2025, time.March, 1),
			end:        date(2025, time.March, 1),
			wantDays:   0,
			wantMonths: 0,
			wantYears:  0,
		},
		{
			name:       "a few days rounds to one month near boundary",
			start:      date(2025, time.January, 1),
			end:        date(2025, time.January, 28),
			wantDays:   27,
			wantMonths: 1,
			wantYears:  0,
		},
		{
			name:       "mid month stays at zero months",
			start:      date(2025, time.January, 1),
			end:        date(2025, time.January, 20),
			wantDays:   19,
			wantMonths: 0,
			wantYears:  0,
		},
		{
			name:       "three year contract",
			start:      date(2022, time.July, 1),
			end:        date(2025, time.July, 1),
			wantDays:   1096,
			wantMonths: 36,
			wantYears:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateDuration(tt.start, tt.end)

			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, got.Days, "days")
			assert.Equal(t, tt.wantMonths, got.Months, "months")
			assert.Equal(t, tt.wantYears, got.Years, "years")
		})
	}
}

func TestCalculateDuration_EndBeforeStart(t *testing.T) {
	_, err := CalculateDuration(date(2025, time.June, 1), date(2025, time.May, 31))

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "END_BEFORE_START", domainErr.Code)
}

func TestCalculateDuration_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.January, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 2, 1, 0, 0, 0, time.UTC)

	got, err := CalculateDuration(start, end)

	require.NoError(t, err)
	assert.Equal(t, 1, got.Days)
}

func TestContractDuration_Class(t *testing.T) {
	tests := []struct {
		name     string
		duration ContractDuration
		want     DurationClass
	}{
		{"three years is long term", ContractDuration{Years: 3, Months: 36}, DurationLongTerm},
		{"five years is long term", ContractDuration{Years: 5, Months: 60}, DurationLongTerm},
		{"one year is annual", ContractDuration{Years: 1, Months: 12}, DurationAnnual},
		{"two years is annual", ContractDuration{Years: 2, Months: 29}, DurationAnnual},
		{"six months is mid term", ContractDuration{Years: 0, Months: 6}, DurationMidTerm},
		{"eleven months is mid term", ContractDuration{Years: 0, Months: 11}, DurationMidTerm},
		{"five months is short term", ContractDuration{Years: 0, Months: 5}, DurationShortTerm},
		{"zero duration is short term", ContractDuration{}, DurationShortTerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.duration.Class())
		})
	}
}
