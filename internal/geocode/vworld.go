package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"loolook_backend/internal/geo"
	"loolook_backend/platform/logger"
)

const defaultVWorldURL = "https://api.vworld.kr/req/address"

// VWorldClient queries the VWorld structured address lookup, trying the
// road-name address type first and the parcel (jibun) type second.
type VWorldClient struct {
	key     string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewVWorldClient creates a VWorld address provider.
func NewVWorldClient(key string, log *logger.Logger) *VWorldClient {
	return &VWorldClient{
		key:     key,
		baseURL: defaultVWorldURL,
		client:  &http.Client{Timeout: 9 * time.Second},
		log:     log,
	}
}

func (c *VWorldClient) Name() string { return "vworld" }

// Lookup tries road then parcel coordinates for the address. Provider
// errors are logged and reported as "no result"; only context
// cancellation is propagated.
func (c *VWorldClient) Lookup(ctx context.Context, addr string) (*Result, error) {
	if c.key == "" {
		return nil, nil
	}

	for _, addrType := range []string{"road", "parcel"} {
		result, err := c.lookupType(ctx, addr, addrType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("vworld lookup failed", "type", addrType, "error", err)
			continue
		}
		if result != nil {
			return result, nil
		}
	}

	return nil, nil
}

func (c *VWorldClient) lookupType(ctx context.Context, addr, addrType string) (*Result, error) {
	params := url.Values{}
	params.Set("service", "address")
	params.Set("request", "getCoord")
	params.Set("version", "2.0")
	params.Set("crs", "EPSG:4326")
	params.Set("format", "json")
	params.Set("type", addrType)
	params.Set("refine", "true")
	params.Set("simple", "true")
	params.Set("address", addr)
	params.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.ProviderError("vworld-"+addrType, resp.StatusCode, string(body))
		return nil, fmt.Errorf("vworld %s: status %d", addrType, resp.StatusCode)
	}

	var payload vworldResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	lng, errX := strconv.ParseFloat(payload.Response.Result.Point.X, 64)
	lat, errY := strconv.ParseFloat(payload.Response.Result.Point.Y, 64)
	if errX != nil || errY != nil {
		return nil, nil
	}
	if !geo.InKorea(lat, lng) {
		return nil, nil
	}

	return &Result{
		Point:  geo.Point{Lat: lat, Lng: lng},
		Source: "vworld-" + addrType,
	}, nil
}
