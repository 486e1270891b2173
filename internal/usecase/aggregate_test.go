package usecase

import (
	"testing"

	"PerpScan/internal/domain/models"
)

func TestAggregateWindowOHLC(t *testing.T) {
	series := []models.RawCandle{
		candle("90", "95", "89", "94", "10"), // outside the 10m window
		candle("100", "110", "99", "105", "10"),
		candle("105", "112", "104", "108", "10"),
	}

	agg, ok := aggregate("BTCUSDT", series, models.Window(10))
	if !ok {
		t.Fatalf("expected aggregation")
	}
	if !agg.Open.Equal(dec("100")) || !agg.Close.Equal(dec("108")) {
		t.Fatalf("unexpected open/close %s/%s", agg.Open, agg.Close)
	}
	if !agg.High.Equal(dec("112")) || !agg.Low.Equal(dec("99")) {
		t.Fatalf("unexpected high/low %s/%s", agg.High, agg.Low)
	}
	// (108-100)/100*100 = 8
	if !agg.ChangePct.Equal(dec("8")) {
		t.Fatalf("unexpected changePct %s", agg.ChangePct)
	}
	// (112-99)/100*100 = 13
	if !agg.AmplitudePct.Equal(dec("13")) {
		t.Fatalf("unexpected amplitudePct %s", agg.AmplitudePct)
	}
}

func TestAggregateInsufficientHistory(t *testing.T) {
	series := flatCandles(3, "100")
	if _, ok := aggregate("BTCUSDT", series, models.Window(30)); ok {
		t.Fatalf("expected window to be skipped for short series")
	}
}

func TestAggregateZeroOpenSkipped(t *testing.T) {
	series := []models.RawCandle{candle("0", "1", "0", "1", "10")}
	if _, ok := aggregate("XUSDT", series, models.Window(5)); ok {
		t.Fatalf("expected zero-open window to be skipped")
	}
}

func TestLeaderboardOrderingAndCap(t *testing.T) {
	a := NewWindowAggregator([]int{5}, 2)
	candles := map[string][]models.RawCandle{
		"AUSDT": {candle("100", "103", "100", "103", "10")}, // +3%
		"BUSDT": {candle("100", "109", "100", "109", "10")}, // +9%
		"CUSDT": {candle("100", "106", "100", "106", "10")}, // +6%
	}
	perSymbol := a.AggregateAll(candles)
	boards := a.BuildLeaderboards(perSymbol, []string{"AUSDT", "BUSDT", "CUSDT"})

	board, ok := boards["5m"]
	if !ok {
		t.Fatalf("expected 5m board")
	}
	if len(board.Change) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(board.Change))
	}
	if board.Change[0].Symbol != "BUSDT" || board.Change[1].Symbol != "CUSDT" {
		t.Fatalf("unexpected ordering %s, %s", board.Change[0].Symbol, board.Change[1].Symbol)
	}
}

func TestLeaderboardTiesKeepUniverseOrder(t *testing.T) {
	a := NewWindowAggregator([]int{5}, 10)
	candles := map[string][]models.RawCandle{
		"AUSDT": {candle("100", "105", "100", "105", "10")},
		"BUSDT": {candle("200", "210", "200", "210", "10")},
	}
	perSymbol := a.AggregateAll(candles)

	boards := a.BuildLeaderboards(perSymbol, []string{"BUSDT", "AUSDT"})
	change := boards["5m"].Change
	if change[0].Symbol != "BUSDT" || change[1].Symbol != "AUSDT" {
		t.Fatalf("expected stable universe order on equal changePct")
	}
}

func TestLeaderboardCrossWindows(t *testing.T) {
	a := NewWindowAggregator([]int{5, 10}, 10)
	candles := map[string][]models.RawCandle{
		"AUSDT": {
			candle("100", "104", "100", "104", "10"),
			candle("104", "110", "104", "110", "10"),
		},
	}
	perSymbol := a.AggregateAll(candles)
	boards := a.BuildLeaderboards(perSymbol, []string{"AUSDT"})

	entry := boards["5m"].Change[0]
	if _, ok := entry.Cross["10m"]; !ok {
		t.Fatalf("expected 10m cross stats on the 5m entry")
	}
	if _, ok := entry.Cross["5m"]; !ok {
		t.Fatalf("expected 5m cross stats on the 5m entry")
	}
}

func TestLeaderboardSymbolMissingFromWindow(t *testing.T) {
	a := NewWindowAggregator([]int{5, 10}, 10)
	candles := map[string][]models.RawCandle{
		"AUSDT": {candle("100", "104", "100", "104", "10")}, // only one candle
	}
	perSymbol := a.AggregateAll(candles)
	boards := a.BuildLeaderboards(perSymbol, []string{"AUSDT"})

	if len(boards["10m"].Change) != 0 {
		t.Fatalf("expected empty 10m board for short series")
	}
	if len(boards["5m"].Change) != 1 {
		t.Fatalf("expected AUSDT on the 5m board")
	}
}
