package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(at time.Time, temp float64, humidity int) ForecastEntry {
	return ForecastEntry{
		Time: at,
		Conditions: Conditions{
			Temp: temp, TempMin: temp, TempMax: temp, Humidity: humidity,
		},
	}
}

func TestSummarizeDays_GroupsByLocalDay(t *testing.T) {
	// 21:00 UTC on the 26th is already the 27th in UTC+5:30.
	base := time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)
	f := Forecast{
		City:     "Baranagar",
		Timezone: 5*time.Hour + 30*time.Minute,
		Entries: []ForecastEntry{
			entry(base, 30, 60),
			entry(base.Add(3*time.Hour), 28, 70),
			entry(base.Add(6*time.Hour), 26, 80),
			entry(base.Add(9*time.Hour), 25, 90),
		},
	}

	days := SummarizeDays(f)
	require.Len(t, days, 2)

	type summary struct {
		Date    string
		Min     float64
		Max     float64
		Avg     float64
		Entries int
		Hum     int
	}
	got := []summary{}
	for _, d := range days {
		got = append(got, summary{d.Date, d.MinTemp, d.MaxTemp, d.AvgTemp, d.Entries, d.Humidity})
	}
	want := []summary{
		{"2024-04-26", 28, 30, 29, 2, 65},
		{"2024-04-27", 25, 26, 25.5, 2, 85},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("day summaries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, base, days[0].First.Time)
	assert.Equal(t, time.Saturday, days[1].Weekday)
}

func TestSummarizeDays_CapsAtSevenDays(t *testing.T) {
	base := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)
	f := Forecast{}
	for i := range 10 {
		f.Entries = append(f.Entries, entry(base.Add(time.Duration(i)*24*time.Hour), float64(i), 50))
	}

	days := SummarizeDays(f)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-04-07", days[6].Date)
}

func TestSummarizeDays_Empty(t *testing.T) {
	assert.Empty(t, SummarizeDays(Forecast{}))
}

func TestUpcoming(t *testing.T) {
	base := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	f := Forecast{}
	for i := range 10 {
		f.Entries = append(f.Entries, entry(base.Add(time.Duration(i)*3*time.Hour), 10, 50))
	}

	assert.Len(t, Upcoming(f, 8), 8)
	assert.Len(t, Upcoming(f, 20), 10)
	assert.Empty(t, Upcoming(f, 0))
}
