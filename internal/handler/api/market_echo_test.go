package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"PerpScan/internal/domain/models"
	"PerpScan/internal/usecase"
	"PerpScan/pkg/logger"
)

type stubSource struct{}

func (stubSource) ListTradableSymbols(context.Context) ([]models.Instrument, error) {
	return []models.Instrument{{Symbol: "BTCUSDT", Status: "TRADING"}}, nil
}

func (stubSource) GetCandles(context.Context, string, int) ([]models.RawCandle, error) {
	one := decimal.NewFromInt(100)
	return []models.RawCandle{{Open: one, High: one, Low: one, Close: one, Volume: one}}, nil
}

func (stubSource) GetTickerPrices(context.Context) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, nil
}

func (stubSource) GetPositions(context.Context) ([]models.Position, error) {
	return nil, nil
}

type stubNotifier struct{}

func (stubNotifier) Send(context.Context, models.Notification) error { return nil }

type memStore struct {
	rules []models.AlertRule
}

func (s *memStore) Load(context.Context) ([]models.AlertRule, error) { return s.rules, nil }
func (s *memStore) Save(_ context.Context, rules []models.AlertRule) error {
	s.rules = rules
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordRefreshDuration(float64)   {}
func (nopMetrics) RecordUniverseSize(int)          {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordAlertTriggered(string)     {}
func (nopMetrics) RecordLastPrice(string, float64) {}

func newTestHandler(t *testing.T) (*MarketHandler, *echo.Echo, *memStore) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	src := stubSource{}
	holder := usecase.NewSnapshotHolder()
	mustDec := func(s string) decimal.Decimal {
		d, _ := decimal.NewFromString(s)
		return d
	}
	orchestrator := usecase.NewRefreshOrchestrator(
		usecase.NewSymbolCatalog(src, log, "USDT", time.Hour),
		usecase.NewCandleFetcher(src, nopMetrics{}, log, 2, 100),
		usecase.NewWindowAggregator([]int{5}, 20),
		usecase.NewStrongClassifier(usecase.StrongClassifierConfig{
			Lookback:          6,
			MinPosRatio:       mustDec("0.7"),
			MinCumChangePct:   mustDec("9"),
			VolumeSpikeRatio:  mustDec("4"),
			MinSpikeChangePct: mustDec("5"),
		}),
		usecase.NewPullbackTracker(usecase.PullbackTrackerConfig{
			RiseThresholdPct: mustDec("4"),
			RetraceRatio:     mustDec("0.98"),
		}),
		holder,
		nopMetrics{},
		log,
		35*time.Second,
	)
	store := &memStore{}
	alerts := usecase.NewAlertEngine(src, stubNotifier{}, store, nopMetrics{}, log, 3*time.Second, 60)
	pullback := usecase.NewPullbackTracker(usecase.PullbackTrackerConfig{
		RiseThresholdPct: mustDec("4"),
		RetraceRatio:     mustDec("0.98"),
	})

	h := NewMarketHandler(holder, orchestrator, pullback, alerts, log, false, 60)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e, store
}

func TestGetAlertRulesEmpty(t *testing.T) {
	_, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReplaceAlertRulesAssignsIDs(t *testing.T) {
	_, e, store := newTestHandler(t)

	body := `{"rules":[{"symbol":"BTCUSDT","type":"price_reached","targetValue":"68000"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.rules) != 1 {
		t.Fatalf("expected one persisted rule, got %d", len(store.rules))
	}
	rule := store.rules[0]
	if rule.ID == "" {
		t.Fatalf("expected generated rule id")
	}
	if rule.RepeatMode != models.RepeatContinuous {
		t.Fatalf("expected default repeat mode, got %q", rule.RepeatMode)
	}
	if rule.CooldownSeconds != 60 {
		t.Fatalf("expected default cooldown, got %d", rule.CooldownSeconds)
	}
	if !rule.Enabled {
		t.Fatalf("expected rule enabled by default")
	}
}

func TestReplaceAlertRulesKeepsTriggerState(t *testing.T) {
	_, e, store := newTestHandler(t)

	// Round-trip a rule that already fired: the edit must not reset its
	// cooldown window or once-mode history.
	last := "2025-06-01T12:00:00Z"
	body := `{"rules":[{"id":"r1","symbol":"BTCUSDT","type":"price_reached","targetValue":"68000",` +
		`"frequency":"once","enabled":false,"isTriggered":true,"lastTriggerTime":"` + last + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.rules) != 1 {
		t.Fatalf("expected one persisted rule, got %d", len(store.rules))
	}
	rule := store.rules[0]
	if !rule.Triggered {
		t.Fatalf("replace must preserve the triggered flag")
	}
	want, _ := time.Parse(time.RFC3339, last)
	if !rule.LastTriggerTime.Equal(want) {
		t.Fatalf("replace must preserve the last trigger time, got %s", rule.LastTriggerTime)
	}
	if rule.Enabled {
		t.Fatalf("a disarmed once-mode rule must stay disabled")
	}
}

func TestReplaceAlertRulesExplicitZeroCooldown(t *testing.T) {
	_, e, store := newTestHandler(t)

	body := `{"rules":[{"symbol":"BTCUSDT","type":"price_reached","targetValue":"68000","cooldownSeconds":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.rules) != 1 {
		t.Fatalf("expected one persisted rule, got %d", len(store.rules))
	}
	if store.rules[0].CooldownSeconds != 0 {
		t.Fatalf("explicit zero cooldown must survive, got %d", store.rules[0].CooldownSeconds)
	}
}

func TestReplaceAlertRulesRejectsBadKind(t *testing.T) {
	_, e, store := newTestHandler(t)

	body := `{"rules":[{"symbol":"BTCUSDT","type":"moon_reached","targetValue":"1"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected http status %d", rec.Code)
	}
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected embedded 400 status, got %d", resp.Status)
	}
	if len(store.rules) != 0 {
		t.Fatalf("invalid payload must not mutate rules")
	}
}

func TestReplaceAlertRulesRejectsBadDecimal(t *testing.T) {
	_, e, store := newTestHandler(t)

	body := `{"rules":[{"symbol":"BTCUSDT","type":"price_reached","targetValue":"not-a-number"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected embedded 400 status, got %d", resp.Status)
	}
	if len(store.rules) != 0 {
		t.Fatalf("invalid payload must not mutate rules")
	}
}

func TestForceRefreshPublishes(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	snap := h.holder.Load()
	if snap.RefreshedAt.IsZero() {
		t.Fatalf("expected a published snapshot after forced refresh")
	}
}

func TestGetLeaderboards(t *testing.T) {
	_, e, _ := newTestHandler(t)

	// Publish a snapshot first.
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/api/leaderboards", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "5m") {
		t.Fatalf("expected 5m board in response: %s", rec.Body.String())
	}
}
