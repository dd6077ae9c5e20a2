package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return NewClient(Config{IndexAPIURL: url, Timeout: 2 * time.Second})
}

func indexServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_LiveIndex(t *testing.T) {
	srv := indexServer(t, `{"data":[{"value":"72","value_classification":"Greed"}]}`)
	got := testClient(srv.URL).Fetch(context.Background(), 0)

	require.Len(t, got, len(DomainOrder))
	crypto := got["crypto"]
	assert.Equal(t, 72, crypto.Value)
	assert.Equal(t, "greed", crypto.Label)
	assert.Equal(t, "alternative.me", crypto.Source)

	// Non-crypto domains come from the heuristic baselines.
	assert.Equal(t, 60, got["gold"].Value)
	assert.Equal(t, "trend estimate", got["gold"].Source)
	assert.Equal(t, 50, got["stock"].Value)
}

func TestFetch_IndexDownFillsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	got := testClient(srv.URL).Fetch(context.Background(), 0)

	require.Len(t, got, len(DomainOrder))
	assert.Equal(t, 55, got["crypto"].Value)
	assert.Equal(t, "default", got["crypto"].Source)
	for _, domain := range DomainOrder {
		r := got[domain]
		assert.GreaterOrEqual(t, r.Value, 0)
		assert.LessOrEqual(t, r.Value, 100)
	}
}

func TestFetch_AdjustmentAppliedAndClamped(t *testing.T) {
	srv := indexServer(t, `{"data":[{"value":"5"}]}`)
	got := testClient(srv.URL).Fetch(context.Background(), -10)

	assert.Equal(t, 0, got["crypto"].Value) // 5-10 clamps at 0, not negative
	assert.Equal(t, 50, got["gold"].Value)  // 60-10
	assert.Equal(t, 40, got["stock"].Value) // 50-10
}

func TestFetch_MalformedIndexBody(t *testing.T) {
	srv := indexServer(t, `{"data":[{"value":"not-a-number"}]}`)
	got := testClient(srv.URL).Fetch(context.Background(), 0)
	// Unparsable index degrades to the default crypto reading.
	assert.Equal(t, "default", got["crypto"].Source)
}

func TestAdjustmentFor(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   int
	}{
		{"no events", nil, 0},
		{"unrelated event", []string{"Crude Oil Inventories"}, 0},
		{"payrolls", []string{"Non-Farm Employment Change"}, -10},
		{"inflation", []string{"CPI m/m"}, -5},
		{"rate decision", []string{"FOMC Statement"}, -8},
		{"interest rate wording", []string{"Federal Funds Rate"}, -8},
		{"payrolls outranks inflation", []string{"CPI y/y", "Non-Farm Employment Change"}, -10},
		{"inflation outranks rates", []string{"FOMC Statement", "CPI m/m"}, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustmentFor(tt.events))
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want int }{
		{-20, 0}, {-1, 0}, {0, 0}, {45, 45}, {100, 100}, {130, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in))
	}
	// Spec vectors: base+delta then clamp.
	assert.Equal(t, 45, Clamp(55-10))
	assert.Equal(t, 0, Clamp(5-10))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{100, "extreme greed"}, {75, "extreme greed"},
		{74, "greed"}, {60, "greed"},
		{59, "neutral"}, {40, "neutral"},
		{39, "fear"}, {25, "fear"},
		{24, "extreme fear"}, {0, "extreme fear"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.value), "value %d", tt.value)
	}
}

func TestEmoji(t *testing.T) {
	assert.Equal(t, "😈", Emoji(80))
	assert.Equal(t, "😄", Emoji(65))
	assert.Equal(t, "😐", Emoji(50))
	assert.Equal(t, "😨", Emoji(30))
	assert.Equal(t, "😱", Emoji(10))
}
