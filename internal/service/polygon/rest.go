package polygon

import (
	"context"
	"fmt"
	"time"

	"DarkPull/internal/domain/models"
	domsvc "DarkPull/internal/domain/service"
	"DarkPull/internal/service/ratelimit"
	xhttp "DarkPull/pkg/http"
	"DarkPull/pkg/util"
)

// RESTClient implements MarketDataAPI against the Polygon REST API.
// All calls go through a shared token bucket so the oracle and the
// backfill cannot blow the provider's rate limit together.
type RESTClient struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rps     float64
}

// NewRESTClient creates a rate-limited Polygon REST client.
func NewRESTClient(apiKey, baseURL string, rps float64, timeout time.Duration) domsvc.MarketDataAPI {
	return &RESTClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

type aggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Close  float64 `json:"c"`
		Volume float64 `json:"v"`
		TimeMS int64   `json:"t"`
	} `json:"results"`
	ResultsCount int `json:"resultsCount"`
}

// DailyCloses returns up to days daily closing prices, oldest first.
func (c *RESTClient) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	if err := c.limiter.Wait(ctx, "rest", c.rps, c.rps); err != nil {
		return nil, err
	}

	now := time.Now()
	to := util.DateUTC(now)
	from := util.DateUTC(now.AddDate(0, 0, -days))
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s", c.baseURL, symbol, from, to)

	var resp aggsResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
		QueryParams: map[string][]string{
			"adjusted": {"true"},
			"sort":     {"asc"},
			"limit":    {fmt.Sprintf("%d", days)},
			"apiKey":   {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("polygon aggs %s: %w", symbol, err)
	}

	closes := make([]float64, 0, len(resp.Results))
	for _, r := range resp.Results {
		closes = append(closes, r.Close)
	}
	return closes, nil
}

type tradesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		ID             string  `json:"id"`
		Price          float64 `json:"price"`
		Size           int64   `json:"size"`
		Exchange       int     `json:"exchange"`
		TRFID          *int64  `json:"trf_id"`
		TRFTimestampNS *int64  `json:"trf_timestamp"`
		SIPTimestampNS int64   `json:"sip_timestamp"`
		Conditions     []int32 `json:"conditions"`
		Tape           *int32  `json:"tape"`
		SequenceNumber *int64  `json:"sequence_number"`
	} `json:"results"`
}

// TradesForDate fetches historical trade prints for one symbol and date.
// REST timestamps are nanoseconds; they are converted to the stream's
// millisecond convention before classification.
func (c *RESTClient) TradesForDate(ctx context.Context, symbol, date string, limit int) ([]*models.Trade, error) {
	if err := c.limiter.Wait(ctx, "rest", c.rps, c.rps); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v3/trades/%s", c.baseURL, symbol)

	var resp tradesResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
		QueryParams: map[string][]string{
			"timestamp": {date},
			"limit":     {fmt.Sprintf("%d", limit)},
			"apiKey":    {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("polygon trades %s@%s: %w", symbol, date, err)
	}

	trades := make([]*models.Trade, 0, len(resp.Results))
	for _, r := range resp.Results {
		t := &models.Trade{
			Symbol:         symbol,
			TradeID:        r.ID,
			Price:          r.Price,
			Size:           r.Size,
			VenueID:        r.Exchange,
			TRFID:          r.TRFID,
			SIPTimestampMS: r.SIPTimestampNS / 1e6,
			Conditions:     r.Conditions,
			Tape:           r.Tape,
			SequenceNumber: r.SequenceNumber,
		}
		if r.TRFTimestampNS != nil {
			ms := *r.TRFTimestampNS / 1e6
			t.TRFTimestampMS = &ms
		}
		trades = append(trades, t)
	}
	return trades, nil
}
