package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"loolook_backend/internal/geo"
	"loolook_backend/platform/logger"
)

const (
	defaultKakaoAddressURL = "https://dapi.kakao.com/v2/local/search/address.json"
	defaultKakaoKeywordURL = "https://dapi.kakao.com/v2/local/search/keyword.json"

	keywordBiasRadiusMeters = 5000
)

// errOutOfRange marks a provider document whose coordinate lies outside
// the Korea bounding box. Callers distinguish it from "no document":
// the interactive endpoint reports it as an internal fault, the batch
// resolver falls through to the next strategy.
var errOutOfRange = errors.New("kakao: result outside korea bounds")

// KakaoClient queries the Kakao local search REST API. It serves both as
// an address provider (analyze_type exact, then similar) and as a keyword
// provider for landmark-style queries.
type KakaoClient struct {
	key        string
	addressURL string
	keywordURL string
	client     *http.Client
	log        *logger.Logger
}

// NewKakaoClient creates a Kakao local-search client.
func NewKakaoClient(key string, log *logger.Logger) *KakaoClient {
	return &KakaoClient{
		key:        key,
		addressURL: defaultKakaoAddressURL,
		keywordURL: defaultKakaoKeywordURL,
		client:     &http.Client{Timeout: 9 * time.Second},
		log:        log,
	}
}

func (c *KakaoClient) Name() string { return "kakao" }

// Lookup runs the address search in exact mode first, similar mode second.
func (c *KakaoClient) Lookup(ctx context.Context, addr string) (*Result, error) {
	if c.key == "" {
		return nil, nil
	}

	for _, analyze := range []string{"exact", "similar"} {
		result, err := c.AddressSearch(ctx, addr, analyze)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("kakao address search failed", "analyze", analyze, "error", err)
			continue
		}
		if result != nil {
			return result, nil
		}
	}

	return nil, nil
}

// AddressSearch runs a single address query with the given analyze mode
// ("exact", "similar", or "" for the provider default).
func (c *KakaoClient) AddressSearch(ctx context.Context, query, analyze string) (*Result, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("size", "1")
	if analyze != "" {
		params.Set("analyze_type", analyze)
	}

	source := "kakao-address"
	if analyze != "" {
		source += "-" + analyze
	}

	doc, err := c.fetch(ctx, c.addressURL+"?"+params.Encode(), source)
	if err != nil || doc == nil {
		return nil, err
	}

	return c.buildResult(doc, source, query)
}

// Search runs a place-name keyword query, optionally biased toward a
// reference point within a fixed radius.
func (c *KakaoClient) Search(ctx context.Context, query string, bias *geo.Point) (*Result, error) {
	if c.key == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("size", "1")

	source := "kakao-keyword"
	if bias != nil {
		params.Set("x", strconv.FormatFloat(bias.Lng, 'f', -1, 64))
		params.Set("y", strconv.FormatFloat(bias.Lat, 'f', -1, 64))
		params.Set("radius", strconv.Itoa(keywordBiasRadiusMeters))
		source = "kakao-keyword-biased"
	}

	doc, err := c.fetch(ctx, c.keywordURL+"?"+params.Encode(), source)
	if err != nil || doc == nil {
		return nil, err
	}

	return c.buildResult(doc, source, query)
}

func (c *KakaoClient) fetch(ctx context.Context, reqURL, source string) (*kakaoDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		// 401/429 bodies carry the quota/key diagnosis, keep them visible.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.ProviderError(source, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%s: status %d", source, resp.StatusCode)
	}

	var payload kakaoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Documents) == 0 {
		return nil, nil
	}

	return &payload.Documents[0], nil
}

// buildResult extracts the coordinate from a document, falling back to the
// nested address/road_address fields. Kakao uses x=lng, y=lat. A document
// outside the Korea range yields errOutOfRange, never a Result.
func (c *KakaoClient) buildResult(doc *kakaoDocument, source, query string) (*Result, error) {
	x, y := doc.X, doc.Y
	if x == "" || y == "" {
		if doc.Address != nil && doc.Address.X != "" {
			x, y = doc.Address.X, doc.Address.Y
		} else if doc.RoadAddress != nil && doc.RoadAddress.X != "" {
			x, y = doc.RoadAddress.X, doc.RoadAddress.Y
		}
	}

	lng, errX := strconv.ParseFloat(x, 64)
	lat, errY := strconv.ParseFloat(y, 64)
	if errX != nil || errY != nil {
		return nil, nil
	}
	if !geo.InKorea(lat, lng) {
		return nil, errOutOfRange
	}

	name := doc.PlaceName
	if name == "" {
		name = doc.AddressName
	}
	if name == "" {
		name = query
	}

	return &Result{
		Point:  geo.Point{Lat: lat, Lng: lng},
		Name:   name,
		Source: source,
	}, nil
}
