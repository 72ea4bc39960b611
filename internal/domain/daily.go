package domain

import "time"

// maxSummaryDays caps the week view.
const maxSummaryDays = 7

// DaySummary aggregates the forecast entries of one local calendar day.
type DaySummary struct {
	Date     string        `json:"date"` // YYYY-MM-DD in the city's local time
	Weekday  time.Weekday  `json:"weekday"`
	First    ForecastEntry `json:"first"`
	MinTemp  float64       `json:"min_temp"`
	MaxTemp  float64       `json:"max_temp"`
	AvgTemp  float64       `json:"avg_temp"`
	Entries  int           `json:"entries"`
	Humidity int           `json:"humidity"` // mean, percent
}

// SummarizeDays groups forecast entries by local calendar day using the
// forecast's timezone offset. Days keep the order of their first entry and
// at most seven are returned. Entries are expected in chronological order.
func SummarizeDays(f Forecast) []DaySummary {
	zone := time.FixedZone("", int(f.Timezone/time.Second))

	days := make([]DaySummary, 0, maxSummaryDays)
	index := make(map[string]int, maxSummaryDays)
	humidity := make([]int, 0, maxSummaryDays)

	for _, e := range f.Entries {
		local := e.Time.In(zone)
		key := local.Format(time.DateOnly)

		i, ok := index[key]
		if !ok {
			if len(days) == maxSummaryDays {
				break
			}
			i = len(days)
			index[key] = i
			days = append(days, DaySummary{
				Date:    key,
				Weekday: local.Weekday(),
				First:   e,
				MinTemp: e.Conditions.TempMin,
				MaxTemp: e.Conditions.TempMax,
			})
			humidity = append(humidity, 0)
		}

		d := &days[i]
		d.MinTemp = min(d.MinTemp, e.Conditions.TempMin, e.Conditions.Temp)
		d.MaxTemp = max(d.MaxTemp, e.Conditions.TempMax, e.Conditions.Temp)
		d.AvgTemp += e.Conditions.Temp
		d.Entries++
		humidity[i] += e.Conditions.Humidity
	}

	for i := range days {
		days[i].AvgTemp /= float64(days[i].Entries)
		days[i].Humidity = humidity[i] / days[i].Entries
	}
	return days
}

// Upcoming returns at most n forecast entries, for the hourly chart.
func Upcoming(f Forecast, n int) []ForecastEntry {
	if n <= 0 {
		return []ForecastEntry{}
	}
	if n > len(f.Entries) {
		n = len(f.Entries)
	}
	out := make([]ForecastEntry, n)
	copy(out, f.Entries[:n])
	return out
}
