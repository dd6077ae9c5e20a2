// Package models defines the core domain entities: calendar events, price
// quotes, sentiment readings, and the composed digest report.
package models

import (
	"errors"
	"fmt"
)

// ImpactLevel is a coarse rating of an economic event's expected market
// significance.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Rank orders impact levels for threshold filtering: low < medium < high.
// Unknown levels rank below low.
func (l ImpactLevel) Rank() int {
	switch l {
	case ImpactLow:
		return 1
	case ImpactMedium:
		return 2
	case ImpactHigh:
		return 3
	default:
		return 0
	}
}

// Stars renders the impact level as a star rating for display.
func (l ImpactLevel) Stars() string {
	switch l {
	case ImpactHigh:
		return "⭐⭐⭐"
	case ImpactMedium:
		return "⭐⭐"
	default:
		return "⭐"
	}
}

// Event is one normalized economic-calendar row. Immutable once parsed;
// created per digest run and discarded after send.
type Event struct {
	ExchangeTime string      `json:"exchange_time"` // "HH:MM" in the source market's local time
	ViewerTime   string      `json:"viewer_time"`   // "HH:MM" after viewer-offset conversion
	Country      string      `json:"country"`
	Name         string      `json:"name"`
	Impact       ImpactLevel `json:"impact"`
	Previous     string      `json:"previous"`
	Forecast     string      `json:"forecast"`
	Actual       string      `json:"actual,omitempty"`
}

// Validate checks event field constraints.
func (e *Event) Validate() error {
	if e.Name == "" {
		return errors.New("event name must not be empty")
	}
	if e.ExchangeTime == "" {
		return errors.New("event exchange time must not be empty")
	}
	if e.ViewerTime == "" {
		return errors.New("event viewer time must not be empty")
	}
	if e.Impact.Rank() == 0 {
		return fmt.Errorf("unknown impact level %q", e.Impact)
	}
	return nil
}

// SourceTier identifies which fallback tier produced a value.
type SourceTier string

const (
	TierPrimary   SourceTier = "primary"
	TierSecondary SourceTier = "secondary"
	TierEstimate  SourceTier = "estimate"
)

// PriceQuote is the latest price for one tracked instrument.
type PriceQuote struct {
	Symbol        string     `json:"symbol"`
	Price         float64    `json:"price"`
	ChangePercent float64    `json:"change_percent"`
	Tier          SourceTier `json:"tier"`
}

// SentimentReading is a 0-100 market-mood score for one asset class.
// Value is always clamped to [0, 100] after any adjustment.
type SentimentReading struct {
	Domain string `json:"domain"`
	Value  int    `json:"value"`
	Label  string `json:"label"`
	Source string `json:"source"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks sentiment field constraints.
func (s *SentimentReading) Validate() error {
	if s.Domain == "" {
		return errors.New("sentiment domain must not be empty")
	}
	if s.Value < 0 || s.Value > 100 {
		return fmt.Errorf("sentiment value %d outside [0, 100]", s.Value)
	}
	return nil
}

// DigestReport aggregates one run's fetched data before rendering. Transient:
// produced and consumed within a single run, never persisted.
type DigestReport struct {
	Events     []Event
	Prices     map[string]PriceQuote
	Sentiments map[string]SentimentReading
}
