// Package digest composes the final report text from normalized events,
// price quotes, and sentiment readings, including the rule-based
// directional-impact section.
package digest

import (
	"fmt"
	"strings"

	"github.com/rewired-gh/marketbrief/internal/models"
	"github.com/rewired-gh/marketbrief/internal/prices"
	"github.com/rewired-gh/marketbrief/internal/sentiment"
)

// NoEventsMessage is the complete body sent on nights with no qualifying
// events. Empty-event nights are common; the digest must not show
// misleading partial sections on them.
const NoEventsMessage = "📊 Tonight's Key Events\n\nNo significant economic events tonight.\n"

// WeekendMessage is sent instead of running the pipeline on Saturdays and
// Sundays.
const WeekendMessage = "📊 Weekend Notice\n\n" +
	"It's the weekend. US markets are closed and there are no significant economic events tonight.\n\n" +
	"Rest up, see you Monday! 🎉"

// HolidayMessage is sent instead of running the pipeline on fixed US market
// holidays.
const HolidayMessage = "📊 Holiday Notice\n\n" +
	"Today is a US market holiday. Markets are closed and there are no significant economic events tonight.\n\n" +
	"Enjoy the holiday! 🎉"

// directionEntry maps an event-name keyword to its expected asset reaction
// for each surprise direction.
type directionEntry struct {
	keyword string
	above   string
	below   string
}

// directionTable is scanned in declaration order; the first keyword found in
// the event name wins. The payrolls spellings must stay in sync with the
// keywords sentiment.AdjustmentFor recognizes.
var directionTable = []directionEntry{
	{"non-farm", "bearish for gold, bullish for the dollar", "bullish for gold, bearish for the dollar"},
	{"nonfarm", "bearish for gold, bullish for the dollar", "bullish for gold, bearish for the dollar"},
	{"nfp", "bearish for gold, bullish for the dollar", "bullish for gold, bearish for the dollar"},
	{"cpi", "bearish for gold, bullish for the dollar", "bullish for gold, bearish for the dollar"},
	{"gdp", "bullish for the dollar", "bearish for the dollar"},
	{"retail sales", "bullish for the dollar", "bearish for the dollar"},
	{"pmi", "bullish for the dollar", "bearish for the dollar"},
	{"fomc", "bullish for the dollar", "bearish for the dollar"},
	{"interest rate", "bullish for the dollar", "bearish for the dollar"},
	{"jobless claims", "bearish for the dollar", "bullish for the dollar"},
}

// Compose renders one run's report. With no events it returns exactly
// NoEventsMessage and nothing else.
func Compose(r models.DigestReport) string {
	if len(r.Events) == 0 {
		return NoEventsMessage
	}

	var b strings.Builder
	b.WriteString("📊 Tonight's Key Events\n\n")

	b.WriteString("⏰ Tonight's Events\n")
	for _, e := range r.Events {
		fmt.Fprintf(&b, "%s %s\n", e.ViewerTime, e.Name)
		fmt.Fprintf(&b, "   🇺🇸 | %s %s\n", e.Impact.Stars(), e.Impact)
		fmt.Fprintf(&b, "   Previous: %s → Forecast: %s\n", e.Previous, e.Forecast)
	}

	b.WriteString("\n📈 Current Prices\n")
	if len(r.Prices) > 0 {
		for _, key := range prices.SymbolOrder {
			q, ok := r.Prices[key]
			if !ok {
				continue
			}
			b.WriteString(FormatPrice(key, q))
			b.WriteByte('\n')
		}
	} else {
		b.WriteString("Price fetch failed\n")
	}

	b.WriteString("\n")
	writeSentimentLine(&b, "Crypto fear/greed", r.Sentiments["crypto"])
	writeSentimentLine(&b, "Gold sentiment", r.Sentiments["gold"])
	writeSentimentLine(&b, "US stock sentiment", r.Sentiments["stock"])

	b.WriteString("\n🤖 AI Outlook\n")
	for _, e := range r.Events {
		b.WriteString(DirectionalImpact(e.Name))
	}

	return b.String()
}

func writeSentimentLine(b *strings.Builder, title string, r models.SentimentReading) {
	if r.Domain == "" {
		fmt.Fprintf(b, "%s: --\n", title)
		return
	}
	fmt.Fprintf(b, "%s %s: %d (%s)\n", sentiment.Emoji(r.Value), title, r.Value, r.Label)
}

// DirectionalImpact renders the expected-reaction sentences for one event
// name. First keyword match in table order wins; with no match a generic
// watch-the-surprise sentence is emitted.
func DirectionalImpact(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range directionTable {
		if strings.Contains(lower, entry.keyword) {
			return fmt.Sprintf("%s: above forecast → %s\n   below forecast → %s\n", name, entry.above, entry.below)
		}
	}
	return fmt.Sprintf("%s: watch the surprise vs. forecast\n", name)
}

// FormatPrice renders one quote line, e.g. "BTC $97.00K (📈 +2.50%)".
// Prices of 1000 and above use the K-suffixed form.
func FormatPrice(key string, q models.PriceQuote) string {
	var priceStr string
	if q.Price >= 1000 {
		priceStr = fmt.Sprintf("$%.2fK", q.Price/1000)
	} else {
		priceStr = fmt.Sprintf("$%.2f", q.Price)
	}
	if q.ChangePercent >= 0 {
		return fmt.Sprintf("%s %s (📈 +%.2f%%)", key, priceStr, q.ChangePercent)
	}
	return fmt.Sprintf("%s %s (📉 %.2f%%)", key, priceStr, q.ChangePercent)
}
