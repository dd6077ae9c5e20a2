// Package calendar fetches the economic calendar and normalizes its raw
// markup into filtered, timezone-converted events.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rewired-gh/marketbrief/internal/logger"
	"github.com/rewired-gh/marketbrief/internal/models"
)

// Options controls filtering and time conversion during normalization.
type Options struct {
	// ViewerOffsetMinutes is added to the exchange-local clock time to get
	// the viewer's clock time, modulo one day.
	ViewerOffsetMinutes int
	// WindowStartHour and WindowEndHour bound the viewer-time hours kept,
	// inclusive on both ends.
	WindowStartHour int
	WindowEndHour   int
	// Country keeps only rows for this market (e.g. "US").
	Country string
	// MinImpact drops rows ranked below it.
	MinImpact models.ImpactLevel
}

// Client scrapes the calendar source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a calendar client for the given source URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchToday downloads today's calendar page and returns the normalized
// events. A transport or parse failure returns an error; the caller treats
// that as "no events" rather than aborting the digest.
func (c *Client) FetchToday(ctx context.Context, opts Options) ([]models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; marketbrief/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar body: %w", err)
	}

	events, err := Normalize(string(body), opts)
	if err != nil {
		return nil, err
	}
	logger.Info("calendar: %d events after filtering", len(events))
	return events, nil
}

var clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// Normalize parses raw calendar markup into events, converting each row's
// exchange-local time to the viewer timezone and applying the country,
// impact, and time-window filters. Rows with no parseable time or no event
// name are silently dropped: dirty source markup is expected and must not
// abort calendar processing. Source row order is preserved.
func Normalize(markup string, opts Options) ([]models.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar markup: %w", err)
	}

	var events []models.Event
	doc.Find("tr.calendar__row").Each(func(_ int, row *goquery.Selection) {
		raw := strings.TrimSpace(row.Find(".calendar__time").Text())
		m := clockRe.FindStringSubmatch(raw)
		if m == nil {
			return
		}

		if country := rowCountry(row); country != opts.Country {
			return
		}

		name := strings.TrimSpace(row.Find(".calendar__event").Text())
		if name == "" {
			return
		}

		impact := parseImpact(rowImpact(row))
		if impact.Rank() < opts.MinImpact.Rank() {
			return
		}

		eh, _ := strconv.Atoi(m[1])
		em, _ := strconv.Atoi(m[2])
		exchangeTime := fmt.Sprintf("%02d:%02d", eh, em)
		viewerTime, err := ConvertTime(m[1]+":"+m[2], opts.ViewerOffsetMinutes)
		if err != nil {
			return
		}
		hour, _ := strconv.Atoi(viewerTime[:2])
		if hour < opts.WindowStartHour || hour > opts.WindowEndHour {
			return
		}

		events = append(events, models.Event{
			ExchangeTime: exchangeTime,
			ViewerTime:   viewerTime,
			Country:      opts.Country,
			Name:         name,
			Impact:       impact,
			Previous:     cellOrDash(row, ".calendar__previous"),
			Forecast:     cellOrDash(row, ".calendar__forecast"),
			Actual:       strings.TrimSpace(row.Find(".calendar__actual").Text()),
		})
	})

	return events, nil
}

// ConvertTime shifts an "H:MM" exchange-local clock time by offsetMinutes,
// wrapping across midnight. The day rollover itself is not tracked.
func ConvertTime(hhmm string, offsetMinutes int) (string, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed clock time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("malformed hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed minute in %q", hhmm)
	}

	total := (h*60 + m + offsetMinutes) % 1440
	if total < 0 {
		total += 1440
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// rowCountry extracts the country code from the row's flag icon class list,
// e.g. class="flag-icon US" yields "US".
func rowCountry(row *goquery.Selection) string {
	classes := strings.Fields(row.Find(".flag-icon").AttrOr("class", ""))
	for _, c := range classes {
		if c == "flag-icon" {
			continue
		}
		return strings.ToUpper(strings.TrimPrefix(c, "flag-icon-"))
	}
	return ""
}

// rowImpact reads the impact annotation, preferring the tooltip attribute
// over the cell text.
func rowImpact(row *goquery.Selection) string {
	cell := row.Find(".calendar__impact")
	if title, ok := cell.Find("span").Attr("title"); ok && title != "" {
		return title
	}
	if title, ok := cell.Attr("title"); ok && title != "" {
		return title
	}
	return cell.Text()
}

func parseImpact(s string) models.ImpactLevel {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "high"):
		return models.ImpactHigh
	case strings.Contains(s, "medium"):
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

func cellOrDash(row *goquery.Selection, selector string) string {
	if v := strings.TrimSpace(row.Find(selector).Text()); v != "" {
		return v
	}
	return "--"
}
