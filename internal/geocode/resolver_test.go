package geocode

import (
	"context"
	"errors"
	"testing"

	"loolook_backend/internal/geo"
	"loolook_backend/platform/logger"
)

type fakeAddressProvider struct {
	name    string
	results map[string]*Result
	err     error
	calls   []string
}

func (f *fakeAddressProvider) Name() string { return f.name }

func (f *fakeAddressProvider) Lookup(ctx context.Context, addr string) (*Result, error) {
	f.calls = append(f.calls, addr)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[addr], nil
}

type fakeKeywordProvider struct {
	results map[string]*Result
	queries []string
	biased  int
}

func (f *fakeKeywordProvider) Name() string { return "fake-keyword" }

func (f *fakeKeywordProvider) Search(ctx context.Context, query string, bias *geo.Point) (*Result, error) {
	f.queries = append(f.queries, query)
	if bias != nil {
		f.biased++
	}
	return f.results[query], nil
}

func testLogger() *logger.Logger {
	return logger.New("test")
}

func TestResolve_FirstProviderWins(t *testing.T) {
	addr := "서울 강남구 테헤란로 152"
	first := &fakeAddressProvider{name: "first", results: map[string]*Result{
		addr: {Point: geo.Point{Lat: 37.5, Lng: 127.03}, Source: "first"},
	}}
	second := &fakeAddressProvider{name: "second", results: map[string]*Result{
		addr: {Point: geo.Point{Lat: 37.5001, Lng: 127.0301}, Source: "second"},
	}}

	r := NewResolver([]AddressProvider{first, second}, nil, nil, testLogger())
	result, err := r.Resolve(context.Background(), addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Source != "first" {
		t.Fatalf("expected first provider's result, got %+v", result)
	}
}

func TestResolve_FallsThroughFailedProvider(t *testing.T) {
	addr := "서울 강남구 테헤란로 152"
	broken := &fakeAddressProvider{name: "broken", err: errors.New("timeout")}
	working := &fakeAddressProvider{name: "working", results: map[string]*Result{
		addr: {Point: geo.Point{Lat: 37.5, Lng: 127.03}, Source: "working"},
	}}

	r := NewResolver([]AddressProvider{broken, working}, nil, nil, testLogger())
	result, err := r.Resolve(context.Background(), addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Source != "working" {
		t.Fatalf("expected fallthrough to working provider, got %+v", result)
	}
}

func TestResolve_ExhaustedIsNoResultNotError(t *testing.T) {
	empty := &fakeAddressProvider{name: "empty"}

	r := NewResolver([]AddressProvider{empty}, nil, nil, testLogger())
	result, err := r.Resolve(context.Background(), "서울 강남구 없는주소 1")
	if err != nil {
		t.Fatalf("exhausted chain must not error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
}

func TestResolve_LandmarkUsesKeywordFallback(t *testing.T) {
	addr := "서울 강남구 강남역"
	empty := &fakeAddressProvider{name: "empty"}
	keyword := &fakeKeywordProvider{results: map[string]*Result{
		addr + " 공중화장실": {Point: geo.Point{Lat: 37.498, Lng: 127.027}, Source: "kakao-keyword-biased"},
	}}

	r := NewResolver([]AddressProvider{empty}, keyword, nil, testLogger())
	result, err := r.Resolve(context.Background(), addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Source != "kakao-keyword-biased" {
		t.Fatalf("expected keyword fallback result, got %+v", result)
	}
	if keyword.biased == 0 {
		t.Fatalf("expected a centroid-biased keyword attempt")
	}
	if len(keyword.queries) == 0 || keyword.queries[0] != addr+" 공중화장실" {
		t.Fatalf("expected toilet-suffixed query first, got %v", keyword.queries)
	}
}

func TestResolve_TriesSpacingVariants(t *testing.T) {
	raw := "서울 노원구 하계1동 255"
	variant := "서울 노원구 하계1동255"
	provider := &fakeAddressProvider{name: "p", results: map[string]*Result{
		variant: {Point: geo.Point{Lat: 37.5, Lng: 127.03}, Source: "variant"},
	}}

	r := NewResolver([]AddressProvider{provider}, nil, nil, testLogger())
	result, err := r.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Source != "variant" {
		t.Fatalf("expected variant retry to resolve, got %+v (calls %v)", result, provider.calls)
	}
}

func TestResolve_EmptyAddress(t *testing.T) {
	r := NewResolver(nil, nil, nil, testLogger())
	result, err := r.Resolve(context.Background(), "   ")
	if err != nil || result != nil {
		t.Fatalf("empty address must yield (nil, nil), got %+v, %v", result, err)
	}
}

type fakeCentroids struct {
	patterns [][]string
	point    *geo.Point
}

func (f *fakeCentroids) AreaCentroid(ctx context.Context, patterns []string) (*geo.Point, error) {
	f.patterns = append(f.patterns, patterns)
	return f.point, nil
}

func TestAreaCentroid_WidensPatternsAndFallsBack(t *testing.T) {
	centroids := &fakeCentroids{}
	r := NewResolver(nil, nil, centroids, testLogger())

	p := r.areaCentroid(context.Background(), "서울특별시 강남구 역삼동 기타")
	if p == nil {
		t.Fatalf("expected the citywide fallback point")
	}
	if *p != geo.SeoulCityHall {
		t.Fatalf("expected Seoul City Hall fallback, got %+v", p)
	}

	if len(centroids.patterns) != 1 {
		t.Fatalf("expected one centroid lookup, got %d", len(centroids.patterns))
	}
	got := centroids.patterns[0]
	want := []string{
		"%서울특별시%강남구%역삼동%",
		"%서울특별시%강남구%",
		"%강남구%",
		"%서울특별시%",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d patterns, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pattern %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestAreaCentroid_UsesStoredCentroid(t *testing.T) {
	centroids := &fakeCentroids{point: &geo.Point{Lat: 37.49, Lng: 127.02}}
	r := NewResolver(nil, nil, centroids, testLogger())

	p := r.areaCentroid(context.Background(), "서울 강남구 역삼동 1")
	if p == nil || p.Lat != 37.49 {
		t.Fatalf("expected stored centroid, got %+v", p)
	}
}
