package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"loolook_backend/internal/geo"
	"loolook_backend/internal/toilets/repository"
	"loolook_backend/internal/toilets/service"
	"loolook_backend/internal/toilets/transport"
	"loolook_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	rows     []transport.Toilet
	lastBox  *geo.BoundingBox
	inserted int
	stats    repository.Stats
	statsErr error
}

func (f *fakeRepo) ListAll(ctx context.Context, isPublic *bool) ([]transport.Toilet, error) {
	return f.rows, nil
}

func (f *fakeRepo) ListInBounds(ctx context.Context, box geo.BoundingBox, isPublic *bool) ([]transport.Toilet, error) {
	f.lastBox = &box
	return f.rows, nil
}

func (f *fakeRepo) ListWithinRadius(ctx context.Context, center geo.Point, radiusKM float64, isPublic *bool) ([]transport.Toilet, error) {
	return f.rows, nil
}

func (f *fakeRepo) InsertIgnore(ctx context.Context, name, address string, isPublic bool, p geo.Point) (bool, error) {
	f.inserted++
	return true, nil
}

func (f *fakeRepo) Stats(ctx context.Context) (repository.Stats, error) {
	return f.stats, f.statsErr
}

func newTestRouter(repo repository.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")
	h := New(service.New(repo, log), log)

	r := gin.New()
	r.GET("/api/toilets", h.List)
	r.POST("/api/toilets", h.Submit)
	r.GET("/api/stats", h.Stats)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestList_DefaultModeAll(t *testing.T) {
	id := int64(1)
	repo := &fakeRepo{rows: []transport.Toilet{{ID: id, Name: "공중화장실"}}}
	r := newTestRouter(repo)

	w := doRequest(t, r, http.MethodGet, "/api/toilets", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rows []transport.Toilet
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != id {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestList_BoundsMode(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo)

	w := doRequest(t, r, http.MethodGet, "/api/toilets?mode=bounds&swLat=37.4&swLng=126.9&neLat=37.6&neLng=127.1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.lastBox == nil {
		t.Fatalf("expected a bounds query")
	}
	if repo.lastBox.SouthWest.Lat != 37.4 || repo.lastBox.NorthEast.Lng != 127.1 {
		t.Fatalf("unexpected box %+v", repo.lastBox)
	}
}

func TestList_MalformedNumber(t *testing.T) {
	r := newTestRouter(&fakeRepo{})

	w := doRequest(t, r, http.MethodGet, "/api/toilets?mode=bounds&swLat=abc&swLng=126.9&neLat=37.6&neLng=127.1", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestList_MissingRadiusParams(t *testing.T) {
	r := newTestRouter(&fakeRepo{})

	w := doRequest(t, r, http.MethodGet, "/api/toilets?mode=radius&lat=37.5", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestList_UnknownMode(t *testing.T) {
	r := newTestRouter(&fakeRepo{})

	w := doRequest(t, r, http.MethodGet, "/api/toilets?mode=spiral", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestList_InvalidPublicFlag(t *testing.T) {
	r := newTestRouter(&fakeRepo{})

	w := doRequest(t, r, http.MethodGet, "/api/toilets?public=yes", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmit_ArraySkipsInvalidRows(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo)

	body := `[
		{"name":"valid","address":"서울 강남구 테헤란로 152","lat":37.5,"lng":127.03},
		{"name":"","address":"x","lat":1,"lng":1},
		{"name":"no-coords","address":"서울 서초구"}
	]`
	w := doRequest(t, r, http.MethodPost, "/api/toilets", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp transport.SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.OK || resp.Count != 1 {
		t.Fatalf("expected count 1, got %+v", resp)
	}
	if repo.inserted != 1 {
		t.Fatalf("expected exactly one insert, got %d", repo.inserted)
	}
}

func TestSubmit_SingleObject(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo)

	w := doRequest(t, r, http.MethodPost, "/api/toilets",
		`{"name":"single","address":"서울 강남구 테헤란로 152","lat":37.5,"lng":127.03}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp transport.SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected count 1, got %+v", resp)
	}
}

func TestStats_ReturnsAggregates(t *testing.T) {
	repo := &fakeRepo{stats: repository.Stats{Total: 5821, Public: 5437, Disabled: 2110, BabyChange: 904}}
	r := newTestRouter(repo)

	w := doRequest(t, r, http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp transport.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Total != 5821 || resp.Public != 5437 || resp.Disabled != 2110 || resp.BabyChange != 904 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestStats_RepoFailure(t *testing.T) {
	repo := &fakeRepo{statsErr: errors.New("db down")}
	r := newTestRouter(repo)

	w := doRequest(t, r, http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestSubmit_InvalidJSON(t *testing.T) {
	r := newTestRouter(&fakeRepo{})

	w := doRequest(t, r, http.MethodPost, "/api/toilets", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
