// Package fallback implements the tiered data-acquisition mechanism: an
// ordered list of fetch strategies is attempted until one produces a
// non-empty result, with a static estimate table as the terminal fallback.
// Loss of one category's live data must never abort the whole digest, so
// Fetch never returns an error.
package fallback

import (
	"context"
	"time"

	"github.com/rewired-gh/marketbrief/internal/logger"
)

// Tier is one fallback level for a data category. Fetch reports failure
// either by returning an error or by returning an empty map; both are
// treated identically by the caller.
type Tier[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (map[string]T, error)
}

// Fetch attempts each tier in order and returns the first non-empty result.
// When every tier fails it returns a copy of estimates. The returned map is
// owned by the caller and is never nil as long as estimates is non-empty.
// A tier is attempted exactly once; there are no retries beyond the tier
// order itself.
func Fetch[T any](ctx context.Context, category string, tiers []Tier[T], estimates map[string]T) map[string]T {
	for i, tier := range tiers {
		start := time.Now()
		result, err := tier.Fetch(ctx)
		if err != nil {
			logger.Warn("%s: tier %d (%s) failed after %v: %v", category, i+1, tier.Name, time.Since(start), err)
			continue
		}
		if len(result) == 0 {
			logger.Warn("%s: tier %d (%s) returned no data after %v", category, i+1, tier.Name, time.Since(start))
			continue
		}
		logger.Info("%s: tier %d (%s) succeeded with %d entries in %v", category, i+1, tier.Name, len(result), time.Since(start))
		return result
	}

	logger.Warn("%s: all %d tiers exhausted, using static estimates", category, len(tiers))
	out := make(map[string]T, len(estimates))
	for k, v := range estimates {
		out[k] = v
	}
	return out
}

// FillMissing copies defaults into got for every key got lacks. This is the
// per-key merge mode: a tier that produced a partial result keeps what it
// fetched and only the gaps are estimated. got may be nil.
func FillMissing[T any](got, defaults map[string]T) map[string]T {
	if got == nil {
		got = make(map[string]T, len(defaults))
	}
	filled := 0
	for k, v := range defaults {
		if _, ok := got[k]; !ok {
			got[k] = v
			filled++
		}
	}
	if filled > 0 {
		logger.Debug("filled %d missing entries from defaults", filled)
	}
	return got
}
