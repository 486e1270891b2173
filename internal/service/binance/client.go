package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"PerpScan/internal/domain/models"
	drepo "PerpScan/internal/domain/repository"
	"PerpScan/internal/service/ratelimit"
	xhttp "PerpScan/pkg/http"

	"github.com/shopspring/decimal"
)

const (
	exchangeInfoPath = "/fapi/v1/exchangeInfo"
	klinesPath       = "/fapi/v1/klines"
	tickerPricePath  = "/fapi/v1/ticker/price"
	positionRiskPath = "/fapi/v2/positionRisk"
)

// Client implements MarketDataSource against the Binance USDT-M futures
// REST API. Authenticated endpoints sign the query string with HMAC-SHA256.
type Client struct {
	baseURL   string
	apiKey    string
	secretKey string
	http      *xhttp.Client
	limiter   *ratelimit.Limiter
	maxRPS    float64
}

// New creates a new Binance MarketDataSource.
func New(baseURL, apiKey, secretKey string, timeout time.Duration, maxRPS float64) drepo.MarketDataSource {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		secretKey: secretKey,
		http:      xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:   ratelimit.New(),
		maxRPS:    maxRPS,
	}
}

func (c *Client) throttle(ctx context.Context, key string) error {
	if c.maxRPS <= 0 {
		return nil
	}
	return c.limiter.Wait(ctx, key, c.maxRPS, c.maxRPS)
}

// ListTradableSymbols returns all instruments from exchangeInfo.
func (c *Client) ListTradableSymbols(ctx context.Context) ([]models.Instrument, error) {
	if err := c.throttle(ctx, "exchangeInfo"); err != nil {
		return nil, err
	}

	var payload struct {
		Symbols []models.Instrument `json:"symbols"`
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "GET",
		URL:    c.baseURL + exchangeInfoPath,
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}
	return payload.Symbols, nil
}

// GetCandles returns the most recent limit 5m candles for symbol, ordered
// oldest to newest. The exchange encodes each kline as a mixed-type array.
func (c *Client) GetCandles(ctx context.Context, symbol string, limit int) ([]models.RawCandle, error) {
	if err := c.throttle(ctx, "klines"); err != nil {
		return nil, err
	}

	var rows [][]json.RawMessage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "GET",
		URL:    c.baseURL + klinesPath,
		QueryParams: map[string]string{
			"symbol":   symbol,
			"interval": "5m",
			"limit":    strconv.Itoa(limit),
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}

	candles := make([]models.RawCandle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("klines %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline decodes one kline row: [openTime, open, high, low, close, volume, ...].
// The timestamp is a JSON number, prices and volume are JSON strings.
func parseKline(row []json.RawMessage) (models.RawCandle, error) {
	if len(row) < 6 {
		return models.RawCandle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}

	var openTimeMs int64
	if err := json.Unmarshal(row[0], &openTimeMs); err != nil {
		return models.RawCandle{}, fmt.Errorf("open time: %w", err)
	}

	fields := make([]decimal.Decimal, 5)
	for i := 1; i <= 5; i++ {
		var s string
		if err := json.Unmarshal(row[i], &s); err != nil {
			return models.RawCandle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return models.RawCandle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		fields[i-1] = d
	}

	return models.RawCandle{
		OpenTime: time.UnixMilli(openTimeMs),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
	}, nil
}

// GetTickerPrices returns the latest price for every symbol.
func (c *Client) GetTickerPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	if err := c.throttle(ctx, "ticker"); err != nil {
		return nil, err
	}

	var rows []struct {
		Symbol string          `json:"symbol"`
		Price  decimal.Decimal `json:"price"`
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "GET",
		URL:    c.baseURL + tickerPricePath,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("ticker prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		prices[r.Symbol] = r.Price
	}
	return prices, nil
}

// GetPositions returns open positions with unrealized PnL (authenticated).
func (c *Client) GetPositions(ctx context.Context) ([]models.Position, error) {
	if err := c.throttle(ctx, "positions"); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()
	query += "&signature=" + c.sign(query)

	var positions []models.Position
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  "GET",
		URL:     c.baseURL + positionRiskPath + "?" + query,
		Headers: map[string]string{"X-MBX-APIKEY": c.apiKey},
	}, &positions)
	if err != nil {
		return nil, fmt.Errorf("position risk: %w", err)
	}
	return positions, nil
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
