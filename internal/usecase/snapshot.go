package usecase

import (
	"sync/atomic"
	"time"

	"PerpScan/internal/domain/models"
)

// Snapshot is the complete result of one refresh cycle. It is immutable
// once published; readers see either this cycle or the previous one in
// full, never a mix.
type Snapshot struct {
	Candles      map[string][]models.RawCandle
	PerSymbol    map[string]map[models.Window]models.AggregatedWindow
	Leaderboards map[string]models.Leaderboard
	Strong       []string
	RefreshedAt  time.Time
}

// SnapshotHolder publishes snapshots by whole-value atomic swap, removing
// any need for read-side locking.
type SnapshotHolder struct {
	cur atomic.Pointer[Snapshot]
}

// NewSnapshotHolder starts with an empty snapshot so readers never see nil.
func NewSnapshotHolder() *SnapshotHolder {
	h := &SnapshotHolder{}
	h.cur.Store(&Snapshot{
		Candles:      map[string][]models.RawCandle{},
		PerSymbol:    map[string]map[models.Window]models.AggregatedWindow{},
		Leaderboards: map[string]models.Leaderboard{},
	})
	return h
}

// Load returns the currently published snapshot.
func (h *SnapshotHolder) Load() *Snapshot {
	return h.cur.Load()
}

// Store publishes a fully built snapshot.
func (h *SnapshotHolder) Store(s *Snapshot) {
	h.cur.Store(s)
}
