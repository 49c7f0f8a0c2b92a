package geocode

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"loolook_backend/internal/geo"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()

	if _, ok := c.Get("서울 강남구 테헤란로 152"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	p := geo.Point{Lat: 37.5, Lng: 127.03}
	c.Set("서울 강남구 테헤란로 152", p)

	got, ok := c.Get("서울 강남구 테헤란로 152")
	if !ok || got != p {
		t.Fatalf("expected %+v, got %+v (ok=%v)", p, got, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestRedisCache_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	got, err := c.Get(ctx, "서울 강남구 테헤란로 152")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}

	p := geo.Point{Lat: 37.5, Lng: 127.03}
	if err := c.Set(ctx, "서울 강남구 테헤란로 152", p); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err = c.Get(ctx, "서울 강남구 테헤란로 152")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}
}

func TestRedisCache_KeysAreNamespaced(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	c := NewRedisCache(client)
	if err := c.Set(context.Background(), "addr", geo.Point{Lat: 37, Lng: 127}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if !srv.Exists("geocode:addr") {
		t.Fatalf("expected namespaced key geocode:addr, keys: %v", srv.Keys())
	}
}
