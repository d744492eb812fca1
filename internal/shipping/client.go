// Package shipping talks to the parcel carrier aggregator that quotes shipping rates.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoRates is returned by SelectBestRate when the carrier offered nothing.
var ErrNoRates = errors.New("no shipping rates")

// Parcel describes the package dimensions sent to the carrier.
type Parcel struct {
	WeightKg float64 `json:"weightKg"`
	LengthCm float64 `json:"lengthCm"`
	WidthCm  float64 `json:"widthCm"`
	HeightCm float64 `json:"heightCm"`
}

// BaseParcel is the box used for a single item.
var BaseParcel = Parcel{WeightKg: 1, LengthCm: 20, WidthCm: 15, HeightCm: 10}

// ParcelFor scales BaseParcel by item count: weight grows linearly, height stacks.
func ParcelFor(items int) Parcel {
	if items < 1 {
		items = 1
	}
	p := BaseParcel
	p.WeightKg *= float64(items)
	p.HeightCm *= float64(items)
	return p
}

// QuoteRequest is the body posted to the carrier.
type QuoteRequest struct {
	OriginPostalCode      string `json:"originPostalCode"`
	DestinationPostalCode string `json:"destinationPostalCode"`
	Parcel                Parcel `json:"parcel"`
}

// Rate is one carrier offer.
type Rate struct {
	ID       string  `json:"id"`
	Provider string  `json:"provider"`
	Service  string  `json:"service"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Days     int     `json:"days"`
}

type quoteResponse struct {
	Rates []Rate `json:"rates"`
}

// Client posts quote requests to {baseURL}/quotes.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a carrier client with the given request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Quote asks the carrier for every rate matching req.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) ([]Rate, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quotes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("carrier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("carrier returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)))
		return nil, fmt.Errorf("carrier responded with status %d", resp.StatusCode)
	}

	var out quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode carrier response: %w", err)
	}
	return out.Rates, nil
}

// SelectBestRate returns the cheapest rate; ties go to fewer days, then provider name.
func SelectBestRate(rates []Rate) (*Rate, error) {
	if len(rates) == 0 {
		return nil, ErrNoRates
	}
	sorted := make([]Rate, len(rates))
	copy(sorted, rates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Amount != b.Amount {
			return a.Amount < b.Amount
		}
		if a.Days != b.Days {
			return a.Days < b.Days
		}
		return a.Provider < b.Provider
	})
	best := sorted[0]
	return &best, nil
}
