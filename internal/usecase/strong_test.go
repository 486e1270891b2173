package usecase

import (
	"testing"

	"PerpScan/internal/domain/models"
)

func testClassifier() *StrongClassifier {
	return NewStrongClassifier(StrongClassifierConfig{
		Lookback:          6,
		MinPosRatio:       dec("0.7"),
		MinCumChangePct:   dec("9"),
		VolumeSpikeRatio:  dec("4"),
		MinSpikeChangePct: dec("5"),
	})
}

// steadyRise builds six candles opening at 100 with the last close and the
// window high chosen by the caller.
func steadyRise(lastClose, highMax string) []models.RawCandle {
	series := []models.RawCandle{
		candle("100", "102", "100", "102", "100"),
		candle("102", "104", "102", "104", "100"),
		candle("104", "106", "104", "106", "100"),
		candle("106", "107", "106", "107", "100"),
		candle("107", highMax, "107", "107", "100"),
	}
	series = append(series, candle("107", highMax, "106", lastClose, "100"))
	return series
}

func TestSustainedAdvanceFiresAtThreshold(t *testing.T) {
	s := testClassifier()
	// firstOpen=100, highMax=110, close=107: posRatio 0.7, cum 7% -> too low.
	if s.classify(steadyRise("107", "110")) {
		t.Fatalf("cum change below threshold should not fire")
	}
	// close=109.3: posRatio 0.93, cum 9.3% -> fires.
	if !s.classify(steadyRise("109.3", "110")) {
		t.Fatalf("expected sustained advance to fire")
	}
}

func TestSustainedAdvancePosRatioBoundary(t *testing.T) {
	s := testClassifier()
	// highMax=114: posRatio = 9.8/14 = 0.7 exactly, cum 9.8% -> fires.
	if !s.classify(steadyRise("109.8", "114")) {
		t.Fatalf("posRatio exactly at threshold should fire")
	}
	// highMax=115: posRatio = 9.8/15 ~ 0.653 -> does not fire.
	if s.classify(steadyRise("109.8", "115")) {
		t.Fatalf("posRatio below threshold should not fire")
	}
}

func TestSustainedAdvanceRangePosition(t *testing.T) {
	// firstOpen=100, highMax=110: current 107 sits at 0.7 of the range,
	// 106.9 just under it.
	s := NewStrongClassifier(StrongClassifierConfig{
		Lookback:          6,
		MinPosRatio:       dec("0.7"),
		MinCumChangePct:   dec("7"),
		VolumeSpikeRatio:  dec("4"),
		MinSpikeChangePct: dec("5"),
	})
	if !s.classify(steadyRise("107", "110")) {
		t.Fatalf("current at 0.7 of the range must fire")
	}
	if s.classify(steadyRise("106.9", "110")) {
		t.Fatalf("current under 0.7 of the range must not fire")
	}
}

func TestVolumeSpikeFires(t *testing.T) {
	s := testClassifier()
	series := []models.RawCandle{
		candle("100", "100", "100", "100", "80"),
		candle("100", "100", "100", "100", "100"),
		candle("100", "100", "100", "100", "90"),
		candle("100", "100", "100", "100", "70"),
		candle("100", "100", "100", "100", "60"),
		candle("100", "106", "100", "105.5", "400"), // 4x of 100, +5.5%
	}
	if !s.classify(series) {
		t.Fatalf("expected volume spike to fire")
	}

	series[5].Volume = dec("399")
	if s.classify(series) {
		t.Fatalf("volume below 4x prior max should not fire")
	}

	series[5].Volume = dec("400")
	series[5].Close = dec("104.9") // +4.9%
	if s.classify(series) {
		t.Fatalf("spike change below threshold should not fire")
	}
}

func TestVolumeSpikeNeedsPriorVolume(t *testing.T) {
	s := testClassifier()
	series := []models.RawCandle{
		candle("100", "100", "100", "100", "0"),
		candle("100", "100", "100", "100", "0"),
		candle("100", "100", "100", "100", "0"),
		candle("100", "100", "100", "100", "0"),
		candle("100", "100", "100", "100", "0"),
		// +6% with a huge last volume: enough for the spike's change gate
		// but below the sustained-advance cumulative threshold.
		candle("100", "106", "100", "106", "500"),
	}
	if s.classify(series) {
		t.Fatalf("zero prior volume should never fire the spike combo")
	}
}

func TestClassifySkipsShortSeries(t *testing.T) {
	s := testClassifier()
	if s.classify(steadyRise("120", "120")[:5]) {
		t.Fatalf("series shorter than the lookback should be skipped")
	}
}

func TestClassifyAllSorted(t *testing.T) {
	s := testClassifier()
	candles := map[string][]models.RawCandle{
		"ZUSDT": steadyRise("110", "110"),
		"AUSDT": steadyRise("110", "110"),
		"MUSDT": flatCandles(6, "100"),
	}
	got := s.ClassifyAll(candles)
	if len(got) != 2 || got[0] != "AUSDT" || got[1] != "ZUSDT" {
		t.Fatalf("unexpected strong set %v", got)
	}
}
