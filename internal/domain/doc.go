// Package domain models the weather data served by the dashboard.
//
// # Data Source
//
// Weather data comes from the OpenWeatherMap REST API
// (https://openweathermap.org/api). All requests use metric units, so
// temperatures are degrees Celsius, wind speed is metres per second,
// pressure is hPa and visibility is metres.
//
// # Provider Conventions
//
// Time:
//
//	Observation and forecast times are Unix seconds (UTC). Each response
//	carries a "timezone" field: the city's offset from UTC in seconds.
//	Local calendar days (used by [SummarizeDays]) are computed by shifting
//	UTC times by that offset, not by the server's local zone.
//
// Forecast steps:
//
//	The 5 day forecast endpoint returns 40 entries in 3-hour steps, so a
//	full day is 8 entries. The first entry of each local day is used as the
//	day's representative reading.
//
// Icons:
//
//	Condition icon codes look like "10d" (day) or "10n" (night) and are
//	rendered from https://openweathermap.org/img/wn/<code>@<n>x.png.
//
// Rounding:
//
//	Display temperatures are rounded half-up ([Round]): 2.5 becomes 3 and
//	-2.5 becomes -2.
//
// # City Identity
//
// A city is identified by its plain name string. Names are not normalized
// and have no canonical ID, so two different places called "Springfield"
// are the same favorite. Nearby-city filtering is the one place where names
// are compared case-insensitively.
package domain
