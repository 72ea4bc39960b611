package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/weather-dashboard/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// console reads commands and renders the session. Searches run in the
// background so a new line can supersede a slow one.
type console struct {
	session *dashboard.Session

	outMu sync.Mutex
	out   io.Writer

	wg sync.WaitGroup
}

func newConsole(session *dashboard.Session, out io.Writer) *console {
	return &console{session: session, out: out}
}

// run processes lines from in until EOF, ":quit", or ctx is cancelled.
func (c *console) run(ctx context.Context, in io.Reader) {
	stop := make(chan struct{})
	defer close(stop)
	lines := readLines(in, stop)

	c.printf("type a city, or :fav, :favs, :s <prefix>, :quit\n")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !c.handle(ctx, strings.TrimSpace(line)) {
				return
			}
		}
	}
}

// readLines scans in on its own goroutine. The channel closes at EOF or once
// stop is closed, whichever comes first.
func readLines(in io.Reader, stop <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()
	return lines
}

// handle executes one input line. It returns false when the console should exit.
func (c *console) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case ":quit", ":q":
		return false
	case ":favs":
		c.printFavorites()
	case ":fav":
		city := arg
		if city == "" {
			city = c.session.View().Current.City
		}
		if city == "" {
			c.printf("nothing to favorite yet\n")
			break
		}
		if c.session.ToggleFavorite(ctx, city) {
			c.printf("★ %s added to favorites\n", city)
		} else {
			c.printf("☆ %s removed from favorites\n", city)
		}
	case ":s":
		found, err := c.session.Suggest(ctx, arg)
		if err != nil {
			c.printf("suggestions failed: %v\n", err)
			break
		}
		for _, s := range found {
			c.printf("  %s\n", s.Label())
		}
	default:
		c.search(ctx, line)
	}
	return true
}

// search starts a background search and renders its outcome.
func (c *console) search(ctx context.Context, city string) {
	c.printf("loading %s...\n", city)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		view, err := c.session.Search(ctx, city)
		switch {
		case errors.Is(err, dashboard.ErrSuperseded):
			return
		case err != nil:
			c.printf("error: %s\n", errorMessage(err))
		default:
			c.render(view)
		}
	}()
}

// refreshEvery repeats the last successful search until ctx is cancelled.
func (c *console) refreshEvery(ctx context.Context, interval time.Duration) {
	for retry.SleepWithContext(ctx, interval) {
		if v := c.session.View(); v.Status == dashboard.StatusReady {
			c.search(ctx, v.Query)
		}
	}
}

// wait blocks until background searches finish.
func (c *console) wait() {
	c.wg.Wait()
}

func (c *console) render(v dashboard.View) {
	r := v.Current.Rounded()
	star := "☆"
	if v.Favorite {
		star = "★"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %s, %s\n", star, v.Current.City, v.Current.Country)
	fmt.Fprintf(&b, "  %d°C  %s  (feels like %d°C, H %d° L %d°)\n", r.Temp, v.Current.Conditions.Description, r.FeelsLike, r.High, r.Low)
	fmt.Fprintf(&b, "  humidity %d%%  wind %d m/s\n", r.Humidity, r.Wind)

	zone := time.FixedZone("", int(v.Forecast.Timezone/time.Second))
	if len(v.Hourly) > 0 {
		b.WriteString("  next hours:")
		for _, e := range v.Hourly {
			fmt.Fprintf(&b, " %s %d°", e.Time.In(zone).Format("15:04"), domain.Round(e.Conditions.Temp))
		}
		b.WriteString("\n")
	}
	for _, d := range v.Days {
		fmt.Fprintf(&b, "  %-9s %3d° / %3d°  %s\n", d.Weekday, domain.Round(d.MaxTemp), domain.Round(d.MinTemp), d.First.Conditions.Description)
	}
	if len(v.Nearby) > 0 {
		b.WriteString("  nearby:")
		for _, n := range v.Nearby {
			fmt.Fprintf(&b, " %s %d°", n.Name, domain.Round(n.Conditions.Temp))
		}
		b.WriteString("\n")
	}
	c.printf("%s", b.String())
}

func (c *console) printFavorites() {
	favs := c.session.Favorites()
	if len(favs) == 0 {
		c.printf("no favorites yet\n")
		return
	}
	for i, f := range favs {
		c.printf("  %d. %s\n", i+1, f)
	}
}

func (c *console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// errorMessage prefers the upstream message, e.g. "city not found".
func errorMessage(err error) string {
	var reqErr *domain.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return err.Error()
}
