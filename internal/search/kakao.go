package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ashureev/outing-planner/internal/domain"
)

// DefaultKakaoBaseURL is the Kakao Local REST API root.
const DefaultKakaoBaseURL = "https://dapi.kakao.com/v2/local"

// Kakao caps radius at 20km and page size at 15.
const (
	kakaoMaxRadius = 20000
	kakaoMaxSize   = 15
)

var errMissingAPIKey = errors.New("kakao rest api key is required")

// KakaoConfig holds configuration for the Kakao Local client.
type KakaoConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// KakaoClient implements Searcher against the Kakao Local API.
type KakaoClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewKakaoClient creates a Kakao Local client.
func NewKakaoClient(cfg KakaoConfig, logger *slog.Logger) (*KakaoClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("create kakao client: %w: %w", errdefs.ErrInvalidArgument, errMissingAPIKey)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultKakaoBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &KakaoClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

type kakaoDocument struct {
	PlaceName    string `json:"place_name"`
	CategoryName string `json:"category_name"`
	AddressName  string `json:"address_name"`
	RoadAddress  string `json:"road_address_name"`
	X            string `json:"x"`
	Y            string `json:"y"`
	Phone        string `json:"phone"`
	PlaceURL     string `json:"place_url"`
	Distance     string `json:"distance"`
}

type kakaoResponse struct {
	Documents []kakaoDocument `json:"documents"`
}

// SearchByKeyword implements Searcher.
func (c *KakaoClient) SearchByKeyword(ctx context.Context, query string, near *domain.Point, radius, limit int) ([]domain.Venue, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("size", strconv.Itoa(clampSize(limit)))
	if near != nil {
		setNear(params, *near, radius)
		params.Set("sort", "distance")
	} else {
		params.Set("sort", "accuracy")
	}

	venues, err := c.get(ctx, "/search/keyword.json", params)
	if err != nil {
		return nil, fmt.Errorf("search keyword %q: %w", query, err)
	}
	return venues, nil
}

// SearchByCategory implements Searcher.
func (c *KakaoClient) SearchByCategory(ctx context.Context, code string, near domain.Point, radius, limit int) ([]domain.Venue, error) {
	params := url.Values{}
	params.Set("category_group_code", code)
	params.Set("size", strconv.Itoa(clampSize(limit)))
	params.Set("sort", "distance")
	setNear(params, near, radius)

	venues, err := c.get(ctx, "/search/category.json", params)
	if err != nil {
		return nil, fmt.Errorf("search category %s: %w", code, err)
	}
	return venues, nil
}

// FindOne implements Searcher.
func (c *KakaoClient) FindOne(ctx context.Context, query string) (*domain.Venue, error) {
	venues, err := c.SearchByKeyword(ctx, query, nil, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(venues) == 0 {
		return nil, nil
	}
	return &venues[0], nil
}

func (c *KakaoClient) get(ctx context.Context, path string, params url.Values) ([]domain.Venue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w: %w", errdefs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Kakao search failed", "path", path, "status", resp.StatusCode)
		return nil, statusError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload kakaoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	venues := make([]domain.Venue, 0, len(payload.Documents))
	for _, doc := range payload.Documents {
		v, ok := doc.venue()
		if !ok {
			continue
		}
		venues = append(venues, v)
	}
	return venues, nil
}

func (d kakaoDocument) venue() (domain.Venue, bool) {
	x, errX := strconv.ParseFloat(d.X, 64)
	y, errY := strconv.ParseFloat(d.Y, 64)
	if errX != nil || errY != nil || d.PlaceName == "" {
		return domain.Venue{}, false
	}
	address := d.AddressName
	if address == "" {
		address = d.RoadAddress
	}
	v := domain.Venue{
		Name:      d.PlaceName,
		Category:  d.CategoryName,
		Address:   address,
		Longitude: x,
		Latitude:  y,
		Phone:     d.Phone,
		PlaceURL:  d.PlaceURL,
	}
	if dist, err := strconv.Atoi(d.Distance); err == nil {
		v.Distance = &dist
	}
	return v, true
}

func setNear(params url.Values, p domain.Point, radius int) {
	params.Set("x", strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	if radius > 0 {
		params.Set("radius", strconv.Itoa(min(radius, kakaoMaxRadius)))
	}
}

func clampSize(limit int) int {
	if limit <= 0 {
		return 5
	}
	return min(limit, kakaoMaxSize)
}

func statusError(code int, body string) error {
	msg := fmt.Sprintf("kakao returned %d: %s", code, body)
	switch code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", errdefs.ErrUnauthenticated, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", errdefs.ErrPermissionDenied, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", errdefs.ErrInvalidArgument, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", errdefs.ErrResourceExhausted, msg)
	default:
		return fmt.Errorf("%w: %s", errdefs.ErrUnavailable, msg)
	}
}
