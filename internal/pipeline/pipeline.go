// Package pipeline orchestrates one digest run: day-type short-circuit,
// concurrent category fetches, composition, and delivery.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/marketbrief/internal/calendar"
	"github.com/rewired-gh/marketbrief/internal/digest"
	"github.com/rewired-gh/marketbrief/internal/logger"
	"github.com/rewired-gh/marketbrief/internal/models"
	"github.com/rewired-gh/marketbrief/internal/notify"
	"github.com/rewired-gh/marketbrief/internal/sentiment"
)

// CalendarFetcher supplies tonight's normalized events.
type CalendarFetcher interface {
	FetchToday(ctx context.Context, opts calendar.Options) ([]models.Event, error)
}

// PriceFetcher supplies quotes for all tracked instruments.
type PriceFetcher interface {
	Fetch(ctx context.Context) map[string]models.PriceQuote
}

// SentimentFetcher supplies readings for all sentiment domains.
type SentimentFetcher interface {
	Fetch(ctx context.Context, adjustment int) map[string]models.SentimentReading
}

// Pipeline runs the daily digest. Each run owns its own data; nothing
// persists between runs.
type Pipeline struct {
	calendar     CalendarFetcher
	calendarOpts calendar.Options
	prices       PriceFetcher
	sentiment    SentimentFetcher
	notifier     notify.Notifier
	now          func() time.Time
}

// New assembles a pipeline. A nil notifier is replaced with the no-op stub.
func New(cal CalendarFetcher, calOpts calendar.Options, pr PriceFetcher, sent SentimentFetcher, n notify.Notifier) *Pipeline {
	if n == nil {
		n = notify.Noop{}
	}
	return &Pipeline{
		calendar:     cal,
		calendarOpts: calOpts,
		prices:       pr,
		sentiment:    sent,
		notifier:     n,
		now:          time.Now,
	}
}

// Run executes one digest cycle. It never returns an error: every failure
// mode inside the run degrades to a still-present message, and a panic is
// caught and logged at this outermost level.
func (p *Pipeline) Run(ctx context.Context) {
	runID := uuid.New().String()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run %s: panic recovered: %v", runID, r)
		}
	}()

	start := p.now()
	logger.Info("run %s: starting digest", runID)

	// Holiday precedes weekend so a holiday date gets the holiday notice
	// even when it lands on a Saturday or Sunday.
	if calendar.IsUSHoliday(start) {
		logger.Info("run %s: US holiday, skipping fetch", runID)
		p.deliver(ctx, runID, digest.HolidayMessage)
		return
	}
	if calendar.IsWeekend(start) {
		logger.Info("run %s: weekend, skipping fetch", runID)
		p.deliver(ctx, runID, digest.WeekendMessage)
		return
	}

	// Prices fetch in parallel with the calendar; sentiment starts once the
	// calendar resolves because the event adjustment is an explicit input.
	quotesCh := make(chan map[string]models.PriceQuote, 1)
	go func() {
		quotesCh <- p.prices.Fetch(ctx)
	}()

	events, err := p.calendar.FetchToday(ctx, p.calendarOpts)
	if err != nil {
		logger.Warn("run %s: calendar fetch failed, continuing without events: %v", runID, err)
		events = nil
	}

	adjustment := sentiment.AdjustmentFor(eventNames(events))
	if adjustment != 0 {
		logger.Info("run %s: event-driven sentiment adjustment %d", runID, adjustment)
	}
	moods := p.sentiment.Fetch(ctx, adjustment)
	report := models.DigestReport{
		Events:     events,
		Prices:     <-quotesCh,
		Sentiments: moods,
	}

	p.deliver(ctx, runID, digest.Compose(report))

	logger.Info("run %s: digest completed in %v", runID, time.Since(start))
}

// deliver sends the message. Delivery failure is logged, not retried here,
// and does not fail the run.
func (p *Pipeline) deliver(ctx context.Context, runID, text string) {
	if err := p.notifier.Send(ctx, text); err != nil {
		logger.Error("run %s: delivery failed: %v", runID, err)
		return
	}
	logger.Info("run %s: digest delivered", runID)
}

func eventNames(events []models.Event) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}
