package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
)

// USGS parameter codes.
const (
	paramDischarge  = "00060" // discharge, cubic feet per second
	paramGageHeight = "00065" // gage height, feet
)

// localOffset is the fixed offset used for the sub-daily query window (CST).
const localOffset = "-06:00"

// Client implements domain.WaterService using the USGS NWIS water services.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a USGS water services client rooted at baseURL,
// e.g. "https://waterservices.usgs.gov/nwis".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// DailyValues returns the first daily discharge and gage height values for
// the station on date.
func (c *Client) DailyValues(ctx context.Context, stationID, date string) (domain.DailyValues, error) {
	params := url.Values{
		"sites":       {stationID},
		"startDT":     {date},
		"endDT":       {date},
		"parameterCd": {paramDischarge + "," + paramGageHeight},
		"format":      {"json"},
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/dv/?"+params.Encode(), "daily")
	if err != nil {
		return domain.DailyValues{}, err
	}

	var out domain.DailyValues
	for _, series := range resp.Value.TimeSeries {
		points := series.points()
		if len(points) == 0 {
			continue
		}
		switch series.variableCode() {
		case paramDischarge:
			out.Discharge = points[0].Value
		case paramGageHeight:
			out.GageHeight = points[0].Value
		}
	}
	return out, nil
}

// InstantaneousGageHeight returns every gage height reading for the station
// over the local calendar day.
func (c *Client) InstantaneousGageHeight(ctx context.Context, stationID, date string) ([]domain.TimedValue, error) {
	params := url.Values{
		"sites":       {stationID},
		"startDT":     {date + "T00:00" + localOffset},
		"endDT":       {date + "T23:59" + localOffset},
		"parameterCd": {paramGageHeight},
		"format":      {"json"},
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/iv/?"+params.Encode(), "instantaneous")
	if err != nil {
		return nil, err
	}

	var out []domain.TimedValue
	for _, series := range resp.Value.TimeSeries {
		if series.variableCode() != paramGageHeight {
			continue
		}
		for _, p := range series.points() {
			out = append(out, domain.TimedValue{DateTime: p.DateTime, Value: p.Value})
		}
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, source string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s water request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return response{}, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("usgs request complete", "source", source, "duration", time.Since(start))
	return out, nil
}

// USGS WaterML-JSON response types.

type response struct {
	Value struct {
		TimeSeries []timeSeries `json:"timeSeries"`
	} `json:"value"`
}

type timeSeries struct {
	Variable struct {
		VariableCode []struct {
			Value string `json:"value"`
		} `json:"variableCode"`
	} `json:"variable"`
	Values []struct {
		Value []point `json:"value"`
	} `json:"values"`
}

type point struct {
	Value    string `json:"value"`
	DateTime string `json:"dateTime"`
}

func (s timeSeries) variableCode() string {
	if len(s.Variable.VariableCode) == 0 {
		return ""
	}
	return s.Variable.VariableCode[0].Value
}

func (s timeSeries) points() []point {
	if len(s.Values) == 0 {
		return nil
	}
	return s.Values[0].Value
}
