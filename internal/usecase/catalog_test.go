package usecase

import (
	"context"
	"testing"
	"time"

	"PerpScan/internal/domain/models"
)

func TestCatalogFiltersAndDedupes(t *testing.T) {
	src := &fakeSource{instruments: []models.Instrument{
		{Symbol: "BTCUSDT", Status: "TRADING"},
		{Symbol: "ETHBTC", Status: "TRADING"},
		{Symbol: "XRPUSDT", Status: "BREAK"},
		{Symbol: "ETHUSDT", Status: "TRADING"},
		{Symbol: "BTCUSDT", Status: "TRADING"}, // duplicate
	}}
	c := NewSymbolCatalog(src, testLogger(), "USDT", time.Hour)

	got := c.Symbols(context.Background())
	want := []string{"BTCUSDT", "ETHUSDT"}
	if len(got) != len(want) {
		t.Fatalf("unexpected universe %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected universe %v", got)
		}
	}
}

func TestCatalogTTLCaching(t *testing.T) {
	src := &fakeSource{instruments: []models.Instrument{{Symbol: "BTCUSDT", Status: "TRADING"}}}
	c := NewSymbolCatalog(src, testLogger(), "USDT", time.Hour)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Symbols(context.Background())
	c.Symbols(context.Background())
	if src.listCalls != 1 {
		t.Fatalf("expected cached result within TTL, calls=%d", src.listCalls)
	}

	now = now.Add(time.Hour)
	c.Symbols(context.Background())
	if src.listCalls != 2 {
		t.Fatalf("expected refetch after TTL, calls=%d", src.listCalls)
	}
}

func TestCatalogFallsBackOnFailure(t *testing.T) {
	src := &fakeSource{instruments: []models.Instrument{{Symbol: "BTCUSDT", Status: "TRADING"}}}
	c := NewSymbolCatalog(src, testLogger(), "USDT", time.Hour)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first := c.Symbols(context.Background())
	if len(first) != 1 {
		t.Fatalf("expected one symbol, got %v", first)
	}

	now = now.Add(2 * time.Hour)
	src.mu.Lock()
	src.instrumentErr = errUpstream
	src.mu.Unlock()

	got := c.Symbols(context.Background())
	if len(got) != 1 || got[0] != "BTCUSDT" {
		t.Fatalf("expected cached universe on fetch failure, got %v", got)
	}
}
