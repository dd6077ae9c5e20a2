package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/marketbrief/internal/models"
)

func sampleEvents() []models.Event {
	return []models.Event{
		{
			ExchangeTime: "08:30",
			ViewerTime:   "21:30",
			Country:      "US",
			Name:         "Non-Farm Employment Change",
			Impact:       models.ImpactHigh,
			Previous:     "150K",
			Forecast:     "180K",
		},
		{
			ExchangeTime: "10:00",
			ViewerTime:   "23:00",
			Country:      "US",
			Name:         "Crude Oil Inventories",
			Impact:       models.ImpactMedium,
			Previous:     "0.5M",
			Forecast:     "-1.2M",
		},
	}
}

func sampleQuotes() map[string]models.PriceQuote {
	return map[string]models.PriceQuote{
		"BTC": {Symbol: "BTC", Price: 97000, ChangePercent: 2.5, Tier: models.TierPrimary},
		"XAG": {Symbol: "XAG", Price: 29.8, ChangePercent: -0.5, Tier: models.TierPrimary},
	}
}

func sampleMoods() map[string]models.SentimentReading {
	return map[string]models.SentimentReading{
		"crypto": {Domain: "crypto", Value: 55, Label: "neutral", Source: "alternative.me"},
		"gold":   {Domain: "gold", Value: 60, Label: "bullish", Source: "trend estimate"},
		"stock":  {Domain: "stock", Value: 50, Label: "neutral", Source: "estimate"},
	}
}

func sampleReport() models.DigestReport {
	return models.DigestReport{
		Events:     sampleEvents(),
		Prices:     sampleQuotes(),
		Sentiments: sampleMoods(),
	}
}

func TestCompose_NoEvents(t *testing.T) {
	r := sampleReport()
	r.Events = nil
	// The no-events notice is the whole body: no price or sentiment sections.
	assert.Equal(t, NoEventsMessage, Compose(r))
}

func TestCompose_SectionOrder(t *testing.T) {
	got := Compose(sampleReport())

	iEvents := strings.Index(got, "⏰ Tonight's Events")
	iPrices := strings.Index(got, "📈 Current Prices")
	iMood := strings.Index(got, "Crypto fear/greed")
	iOutlook := strings.Index(got, "🤖 AI Outlook")
	require.True(t, iEvents >= 0 && iPrices >= 0 && iMood >= 0 && iOutlook >= 0, "missing section in:\n%s", got)
	assert.Less(t, iEvents, iPrices)
	assert.Less(t, iPrices, iMood)
	assert.Less(t, iMood, iOutlook)
}

func TestCompose_EventLines(t *testing.T) {
	got := Compose(sampleReport())

	assert.Contains(t, got, "21:30 Non-Farm Employment Change\n")
	assert.Contains(t, got, "⭐⭐⭐ high\n")
	assert.Contains(t, got, "Previous: 150K → Forecast: 180K\n")
	// The parsed impact level is rendered, not a hardcoded "high".
	assert.Contains(t, got, "⭐⭐ medium\n")
}

func TestCompose_EmptyPricesLine(t *testing.T) {
	r := sampleReport()
	r.Prices = map[string]models.PriceQuote{}
	got := Compose(r)
	assert.Contains(t, got, "Price fetch failed\n")
	assert.NotContains(t, got, "$")
}

func TestCompose_SentimentLines(t *testing.T) {
	got := Compose(sampleReport())
	assert.Contains(t, got, "😐 Crypto fear/greed: 55 (neutral)\n")
	assert.Contains(t, got, "😄 Gold sentiment: 60 (bullish)\n")
	assert.Contains(t, got, "😐 US stock sentiment: 50 (neutral)\n")
}

func TestCompose_MissingSentimentRendersDashes(t *testing.T) {
	r := sampleReport()
	r.Sentiments = nil
	got := Compose(r)
	assert.Contains(t, got, "Crypto fear/greed: --\n")
}

func TestDirectionalImpact_FirstMatchWins(t *testing.T) {
	// Non-farm precedes CPI in table order.
	got := DirectionalImpact("Non-Farm Payrolls and CPI")
	assert.Contains(t, got, "bearish for gold, bullish for the dollar")
	assert.Contains(t, got, "Non-Farm Payrolls and CPI: above forecast")
}

func TestDirectionalImpact_Table(t *testing.T) {
	tests := []struct {
		name      string
		event     string
		wantAbove string
	}{
		{"gdp", "Advance GDP q/q", "bullish for the dollar"},
		{"retail sales", "Core Retail Sales m/m", "bullish for the dollar"},
		{"pmi", "ISM Manufacturing PMI", "bullish for the dollar"},
		{"fomc", "FOMC Statement", "bullish for the dollar"},
		{"interest rate", "Interest Rate Decision", "bullish for the dollar"},
		{"jobless claims inverted", "Unemployment Claims and Jobless Claims", "bearish for the dollar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionalImpact(tt.event)
			assert.Contains(t, got, "above forecast → "+tt.wantAbove)
		})
	}
}

func TestDirectionalImpact_PayrollsSpellings(t *testing.T) {
	// Every payrolls spelling that shifts sentiment must also get the
	// payrolls narrative, not the generic fallback.
	for _, event := range []string{"Non-Farm Employment Change", "Nonfarm Payrolls", "NFP Report"} {
		got := DirectionalImpact(event)
		assert.Contains(t, got, "bearish for gold, bullish for the dollar", "event %q", event)
		assert.NotContains(t, got, "watch the surprise", "event %q", event)
	}
}

func TestDirectionalImpact_NoMatch(t *testing.T) {
	got := DirectionalImpact("Crude Oil Inventories")
	assert.Equal(t, "Crude Oil Inventories: watch the surprise vs. forecast\n", got)
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name string
		q    models.PriceQuote
		want string
	}{
		{"large price gets K suffix", models.PriceQuote{Price: 97000, ChangePercent: 2.5}, "BTC $97.00K (📈 +2.50%)"},
		{"small price plain", models.PriceQuote{Price: 29.8, ChangePercent: 0.5}, "BTC $29.80 (📈 +0.50%)"},
		{"boundary at 1000", models.PriceQuote{Price: 1000, ChangePercent: 0}, "BTC $1.00K (📈 +0.00%)"},
		{"negative change down indicator", models.PriceQuote{Price: 76.5, ChangePercent: -0.3}, "BTC $76.50 (📉 -0.30%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice("BTC", tt.q))
		})
	}
}

func TestFixedMessagesAreDistinct(t *testing.T) {
	assert.NotEqual(t, WeekendMessage, HolidayMessage)
	assert.Contains(t, WeekendMessage, "weekend")
	assert.Contains(t, HolidayMessage, "holiday")
}
