package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"loolook_backend/platform/apperr"
)

func testKakao(t *testing.T, handler http.HandlerFunc) (*KakaoClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewKakaoClient("test-key", testLogger())
	c.addressURL = srv.URL + "/address"
	c.keywordURL = srv.URL + "/keyword"
	return c, srv
}

func TestLookup_EmptyQuery(t *testing.T) {
	svc := NewService(NewKakaoClient("key", testLogger()), nil, testLogger())
	_, err := svc.Lookup(context.Background(), "   ")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestLookup_MissingKey(t *testing.T) {
	svc := NewService(NewKakaoClient("", testLogger()), nil, testLogger())
	_, err := svc.Lookup(context.Background(), "강남역")
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestLookup_NoResult(t *testing.T) {
	kakao, _ := testKakao(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents":[]}`))
	})

	svc := NewService(kakao, nil, testLogger())
	_, err := svc.Lookup(context.Background(), "존재하지않는곳")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookup_KeywordHit(t *testing.T) {
	kakao, _ := testKakao(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/keyword" {
			w.Write([]byte(`{"documents":[{"place_name":"강남역 2호선","x":"127.027","y":"37.498"}]}`))
			return
		}
		w.Write([]byte(`{"documents":[]}`))
	})

	svc := NewService(kakao, nil, testLogger())
	resp, err := svc.Lookup(context.Background(), "강남역")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Name != "강남역 2호선" {
		t.Fatalf("expected place name, got %q", resp.Name)
	}
	if resp.Lat != 37.498 || resp.Lng != 127.027 {
		t.Fatalf("unexpected point: %+v", resp)
	}
}

func TestLookup_OutOfRangeResultRejected(t *testing.T) {
	// Tokyo: a well-formed provider response outside the Korea box.
	kakao, _ := testKakao(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents":[{"place_name":"somewhere","x":"139.69","y":"35.68"}]}`))
	})

	svc := NewService(kakao, nil, testLogger())
	_, err := svc.Lookup(context.Background(), "somewhere")
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected an internal fault for out-of-range responses, got %v", err)
	}
}

func TestAddressProviderLookup_OutOfRangeFallsThrough(t *testing.T) {
	kakao, _ := testKakao(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents":[{"place_name":"somewhere","x":"139.69","y":"35.68"}]}`))
	})

	// In the provider-chain role an out-of-range document is just
	// unusable; the chain moves on instead of aborting.
	result, err := kakao.Lookup(context.Background(), "somewhere")
	if err != nil {
		t.Fatalf("expected soft fall-through, got %v", err)
	}
	if result != nil {
		t.Fatalf("out-of-range document must not produce a result: %+v", result)
	}
}

func TestLookup_CacheHitSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	kakao, _ := testKakao(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/keyword" {
			w.Write([]byte(`{"documents":[{"place_name":"강남역","x":"127.027","y":"37.498"}]}`))
			return
		}
		w.Write([]byte(`{"documents":[]}`))
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := NewService(kakao, NewRedisCache(client), testLogger())
	ctx := context.Background()

	if _, err := svc.Lookup(ctx, "강남역"); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	first := calls.Load()
	if first == 0 {
		t.Fatalf("expected a provider call on cold cache")
	}

	if _, err := svc.Lookup(ctx, "강남역"); err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if calls.Load() != first {
		t.Fatalf("expected cache hit to skip the provider, calls went %d -> %d", first, calls.Load())
	}
}
