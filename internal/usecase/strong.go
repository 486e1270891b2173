package usecase

import (
	"sort"

	"PerpScan/internal/domain/models"

	"github.com/shopspring/decimal"
)

// StrongClassifierConfig holds the trend and volume-spike thresholds.
type StrongClassifierConfig struct {
	Lookback          int
	MinPosRatio       decimal.Decimal
	MinCumChangePct   decimal.Decimal
	VolumeSpikeRatio  decimal.Decimal
	MinSpikeChangePct decimal.Decimal
}

// StrongClassifier flags symbols showing either a sustained advance over
// the lookback window or an abrupt volume spike with price follow-through.
type StrongClassifier struct {
	cfg StrongClassifierConfig
}

func NewStrongClassifier(cfg StrongClassifierConfig) *StrongClassifier {
	return &StrongClassifier{cfg: cfg}
}

// classify reports whether one symbol's series qualifies.
func (s *StrongClassifier) classify(series []models.RawCandle) bool {
	n := s.cfg.Lookback
	if n <= 0 || len(series) < n {
		return false
	}
	recent := series[len(series)-n:]

	return s.sustainedAdvance(recent) || s.volumeSpike(recent)
}

// sustainedAdvance: the current close sits high within the lookback range
// and the cumulative change from the window open clears the threshold.
func (s *StrongClassifier) sustainedAdvance(recent []models.RawCandle) bool {
	firstOpen := recent[0].Open
	if firstOpen.IsZero() {
		return false
	}
	current := recent[len(recent)-1].Close

	highMax := recent[0].High
	for _, c := range recent[1:] {
		if c.High.GreaterThan(highMax) {
			highMax = c.High
		}
	}
	span := highMax.Sub(firstOpen)
	if !span.IsPositive() {
		return false
	}
	posRatio := current.Sub(firstOpen).DivRound(span, 8)
	if posRatio.LessThan(s.cfg.MinPosRatio) {
		return false
	}

	cum := pctOf(current.Sub(firstOpen), firstOpen)
	return cum.GreaterThanOrEqual(s.cfg.MinCumChangePct)
}

// volumeSpike: the newest candle's volume is a multiple of the prior
// maximum in the lookback and its own 5m change clears the floor.
func (s *StrongClassifier) volumeSpike(recent []models.RawCandle) bool {
	last := recent[len(recent)-1]

	priorMax := decimal.Zero
	for _, c := range recent[:len(recent)-1] {
		if c.Volume.GreaterThan(priorMax) {
			priorMax = c.Volume
		}
	}
	if !priorMax.IsPositive() {
		return false
	}
	if last.Volume.LessThan(priorMax.Mul(s.cfg.VolumeSpikeRatio)) {
		return false
	}

	if last.Open.IsZero() {
		return false
	}
	change := pctOf(last.Close.Sub(last.Open), last.Open)
	return change.GreaterThanOrEqual(s.cfg.MinSpikeChangePct)
}

// ClassifyAll rebuilds the strong set from scratch for this cycle,
// returned sorted for stable output.
func (s *StrongClassifier) ClassifyAll(candles map[string][]models.RawCandle) []string {
	var strong []string
	for symbol, series := range candles {
		if s.classify(series) {
			strong = append(strong, symbol)
		}
	}
	sort.Strings(strong)
	return strong
}
