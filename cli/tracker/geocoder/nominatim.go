package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"golang.org/x/time/rate"
)

const (
	DefaultURL       = "https://nominatim.openstreetmap.org/reverse"
	DefaultUserAgent = "qrtrack/1.0"
	serviceName      = "nominatim"
)

type Config struct {
	URL               string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Nominatim: клиент обратного геокодирования OpenStreetMap.
// Политика сервиса допускает не более одного запроса в секунду.
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
	Error string `json:"error"`
}

func NewNominatim(cfg Config) *Nominatim {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Nominatim{
		httpClient: &http.Client{},
		baseURL:    cfg.URL,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

func upstream(err error) error {
	return &types.UpstreamDependencyError{Service: serviceName, Err: err}
}

// ReverseGeocode возвращает название населённого пункта (city, town, village, state)
// или полный адрес. Любая неудача оборачивается в UpstreamDependencyError.
func (n *Nominatim) ReverseGeocode(ctx context.Context, position types.Position2D) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		return "", upstream(fmt.Errorf("превышен лимит запросов: %w", err))
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(position.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(position.Longitude, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", upstream(err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", upstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", upstream(fmt.Errorf("статус %d: %s", resp.StatusCode, string(body)))
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", upstream(fmt.Errorf("ошибка разбора ответа: %w", err))
	}
	if decoded.Error != "" {
		return "", upstream(fmt.Errorf("%s", decoded.Error))
	}

	for _, name := range []string{decoded.Address.City, decoded.Address.Town, decoded.Address.Village, decoded.Address.State, decoded.DisplayName} {
		if name != "" {
			return name, nil
		}
	}
	return "", upstream(fmt.Errorf("в ответе нет названия места"))
}
