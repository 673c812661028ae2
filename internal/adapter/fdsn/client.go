// Package fdsn queries an FDSN station web service for station names,
// coordinates and channel codes.
package fdsn

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/psdplots/plot-catalog-service/internal/domain"
)

const queryPath = "/fdsnws/station/1/query"

// Client fetches station metadata in the FDSN text format.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an FDSN station client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Station returns the site name and coordinates of one station along with
// its channel codes. A station unknown to the service is domain.ErrNotFound.
func (c *Client) Station(ctx context.Context, network, station string) (domain.StationMetadata, error) {
	rows, err := c.query(ctx, network, station, "station")
	if err != nil {
		return domain.StationMetadata{}, err
	}
	if len(rows) == 0 {
		return domain.StationMetadata{}, fmt.Errorf("%w: station %s.%s", domain.ErrNotFound, network, station)
	}

	// #Network|Station|Latitude|Longitude|Elevation|SiteName|StartTime|EndTime
	// The last epoch carries the current site name.
	row := rows[len(rows)-1]
	if len(row) < 6 {
		return domain.StationMetadata{}, fmt.Errorf("station %s.%s: short row with %d fields", network, station, len(row))
	}
	meta := domain.StationMetadata{
		Network:   network,
		Station:   station,
		SiteName:  strings.TrimSpace(row[5]),
		Latitude:  parseFloat(row[2]),
		Longitude: parseFloat(row[3]),
		Elevation: parseFloat(row[4]),
	}

	channels, err := c.channels(ctx, network, station)
	if err != nil {
		c.logger.Warn("channel list unavailable", "network", network, "station", station, "error", err)
	}
	meta.Channels = channels
	return meta, nil
}

// channels returns the distinct channel codes of a station in service order.
func (c *Client) channels(ctx context.Context, network, station string) ([]string, error) {
	rows, err := c.query(ctx, network, station, "channel")
	if err != nil {
		return nil, err
	}

	// #Network|Station|Location|Channel|...
	seen := make(map[string]bool)
	var codes []string
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		code := strings.TrimSpace(row[3])
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

func (c *Client) query(ctx context.Context, network, station, level string) ([][]string, error) {
	params := url.Values{
		"network": {network},
		"station": {station},
		"level":   {level},
		"format":  {"text"},
	}
	fullURL := c.baseURL + queryPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", level, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fdsn service error: status %d: %s", resp.StatusCode, body)
	}

	rows, err := parseText(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", level, err)
	}
	return rows, nil
}

// parseText reads the pipe-separated FDSN text format, skipping the
// "#"-prefixed header.
func parseText(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
