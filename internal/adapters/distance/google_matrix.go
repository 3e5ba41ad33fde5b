package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/metrics"
	"vrp-solver-service/internal/platform/obs"
	"vrp-solver-service/internal/ports"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://maps.googleapis.com/maps/api/distancematrix/json"
	defaultMaxElements = 100
)

// GoogleConfig configures the Google Distance Matrix client.
type GoogleConfig struct {
	APIKey  string
	BaseURL string
	Units   string
	// MaxElements is the provider cap on origins x destinations per request.
	MaxElements int
	Timeout     time.Duration
	// QPS throttles outbound requests; zero disables throttling.
	QPS float64
}

// GoogleMatrixClient implements DistanceMatrixProvider on top of the Google Distance Matrix API.
//
// Every request sends the full location list as destinations, so the number of origins
// per request is MaxElements / n. Origin chunks are requested sequentially and rows are
// assembled in the original location order. Rows found in the optional cache are not requested.
//
// The client is safe for concurrent use.
type GoogleMatrixClient struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	units        string
	maxElements  int
	limiter      *rate.Limiter
	cache        ports.DistanceCache
	maxAttempts  int
	retryBackoff time.Duration
}

func NewGoogleMatrixClient(cfg GoogleConfig, cache ports.DistanceCache) (*GoogleMatrixClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("google distance matrix: api key is empty")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("google distance matrix: invalid base url %q: %w", baseURL, err)
	}

	maxElements := cfg.MaxElements
	if maxElements <= 0 {
		maxElements = defaultMaxElements
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}

	return &GoogleMatrixClient{
		session:      &http.Client{Timeout: timeout},
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		units:        cfg.Units,
		maxElements:  maxElements,
		limiter:      limiter,
		cache:        cache,
		maxAttempts:  4,
		retryBackoff: 200 * time.Millisecond,
	}, nil
}

// ComputeMatrix returns the n x n distance matrix for locations.
// Any failed chunk aborts the whole computation with a *domain.UpstreamError.
func (c *GoogleMatrixClient) ComputeMatrix(
	ctx context.Context,
	locations []string,
) (_ domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "google.ComputeMatrix")(&err)

	n := len(locations)
	maxRows, err := maxOriginRows(n, c.maxElements)
	if err != nil {
		return nil, err
	}

	matrix := make(domain.DistanceMatrix, n)
	pending := make([]int, 0, n)
	for i, origin := range locations {
		if row, ok := c.cachedRow(ctx, origin, locations); ok {
			matrix[i] = row
			continue
		}
		pending = append(pending, i)
	}

	for k, chunk := range chunkOrigins(pending, maxRows) {
		origins := make([]string, 0, len(chunk))
		for _, idx := range chunk {
			origins = append(origins, locations[idx])
		}

		rows, err := c.fetchChunk(ctx, origins, locations)
		if err != nil {
			metrics.MatrixRequests.WithLabelValues("error").Inc()
			return nil, &domain.UpstreamError{
				Chunk:       k,
				FirstOrigin: chunk[0],
				LastOrigin:  chunk[len(chunk)-1],
				Err:         err,
			}
		}
		metrics.MatrixRequests.WithLabelValues("ok").Inc()

		for r, idx := range chunk {
			matrix[idx] = rows[r]
			c.storeRow(ctx, locations[idx], locations, rows[r])
		}
	}

	if err := matrix.Validate(n); err != nil {
		return nil, fmt.Errorf("compute matrix: %w", err)
	}

	return matrix, nil
}

// cachedRow returns the full row for origin when every destination is cached.
// Cache failures are logged and treated as misses.
func (c *GoogleMatrixClient) cachedRow(ctx context.Context, origin string, destinations []string) ([]int, bool) {
	if c.cache == nil {
		return nil, false
	}

	hits, err := c.cache.GetMany(ctx, origin, destinations)
	if err != nil {
		log.Warn().Err(err).Str("origin", origin).Msg("distance cache read failed")
		metrics.MatrixCacheRows.WithLabelValues("miss").Inc()
		return nil, false
	}

	row := make([]int, len(destinations))
	for j, d := range destinations {
		v, ok := hits[d]
		if !ok {
			metrics.MatrixCacheRows.WithLabelValues("miss").Inc()
			return nil, false
		}
		row[j] = v
	}

	metrics.MatrixCacheRows.WithLabelValues("hit").Inc()
	return row, true
}

func (c *GoogleMatrixClient) storeRow(ctx context.Context, origin string, destinations []string, row []int) {
	if c.cache == nil {
		return
	}

	results := make(map[string]int, len(destinations))
	for j, d := range destinations {
		results[d] = row[j]
	}
	if err := c.cache.PutMany(ctx, origin, results); err != nil {
		log.Warn().Err(err).Str("origin", origin).Msg("distance cache write failed")
	}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance *struct {
				Value *float64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// fetchChunk requests the sub-matrix origins x destinations and returns it row by row.
func (c *GoogleMatrixClient) fetchChunk(
	ctx context.Context,
	origins []string,
	destinations []string,
) (_ [][]int, err error) {
	defer obs.Time(ctx, "google.fetchChunk")(&err)

	endpoint := c.requestURL(origins, destinations)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if mr.Status != "" && mr.Status != "OK" {
		return nil, fmt.Errorf("matrix response status %s: %s", mr.Status, mr.ErrorMessage)
	}

	if len(mr.Rows) != len(origins) {
		return nil, fmt.Errorf("expected %d rows; got %d", len(origins), len(mr.Rows))
	}

	out := make([][]int, 0, len(origins))
	for i, row := range mr.Rows {
		if len(row.Elements) != len(destinations) {
			return nil, fmt.Errorf(
				"row %d: expected %d elements; got %d",
				i, len(destinations), len(row.Elements),
			)
		}

		values := make([]int, 0, len(destinations))
		for j, el := range row.Elements {
			if el.Status != "" && el.Status != "OK" {
				return nil, fmt.Errorf("element %q -> %q: status %s", origins[i], destinations[j], el.Status)
			}
			if el.Distance == nil || el.Distance.Value == nil {
				return nil, fmt.Errorf("element %q -> %q: missing distance.value", origins[i], destinations[j])
			}

			// Google reports whole meters; round to keep the matrix integral either way.
			values = append(values, int(math.Round(*el.Distance.Value)))
		}
		out = append(out, values)
	}

	return out, nil
}

// requestURL builds the GET url. Location tokens are already query-escaped,
// so they are joined with pipes and embedded as is.
func (c *GoogleMatrixClient) requestURL(origins, destinations []string) string {
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}

	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(sep)
	if c.units != "" {
		b.WriteString("units=")
		b.WriteString(url.QueryEscape(c.units))
		b.WriteString("&")
	}
	b.WriteString("origins=")
	b.WriteString(strings.Join(origins, "|"))
	b.WriteString("&destinations=")
	b.WriteString(strings.Join(destinations, "|"))
	b.WriteString("&key=")
	b.WriteString(url.QueryEscape(c.apiKey))
	return b.String()
}
