package feedback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"loolook_backend/platform/logger"
	"loolook_backend/platform/validator"
)

type fakeRepo struct {
	mu       sync.Mutex
	feedback []FeedbackRequest
	contacts []ContactRequest
	err      error
}

func (f *fakeRepo) InsertFeedback(ctx context.Context, req FeedbackRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.feedback = append(f.feedback, req)
	return nil
}

func (f *fakeRepo) InsertContact(ctx context.Context, req ContactRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.contacts = append(f.contacts, req)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified int
	err      error
	done     chan struct{}
}

func (f *fakeNotifier) NotifyFeedback(ctx context.Context, req FeedbackRequest) error {
	return f.record()
}

func (f *fakeNotifier) NotifyContact(ctx context.Context, req ContactRequest) error {
	return f.record()
}

func (f *fakeNotifier) record() error {
	f.mu.Lock()
	f.notified++
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func newTestRouter(repo Repository, notifier Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(repo, notifier, validator.New(), logger.New("test"))

	r := gin.New()
	r.POST("/api/feedback", h.SubmitFeedback)
	r.POST("/api/contact", h.SubmitContact)
	return r
}

func post(t *testing.T, r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitFeedback_Success(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{done: make(chan struct{}, 1)}
	r := newTestRouter(repo, notifier)

	w := post(t, r, "/api/feedback",
		`{"category":"toilet_report","message":"화장실 위치가 달라요","location":"서울 강남구"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.feedback) != 1 || repo.feedback[0].Category != "toilet_report" {
		t.Fatalf("feedback not stored: %+v", repo.feedback)
	}

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never invoked")
	}
}

func TestSubmitFeedback_UnknownCategory(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, NoopNotifier{})

	w := post(t, r, "/api/feedback", `{"category":"rant","message":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(repo.feedback) != 0 {
		t.Fatalf("invalid feedback must not be stored: %+v", repo.feedback)
	}
}

func TestSubmitFeedback_MissingMessage(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, NoopNotifier{})

	w := post(t, r, "/api/feedback", `{"category":"bug"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmitFeedback_BadEmail(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, NoopNotifier{})

	w := post(t, r, "/api/feedback", `{"category":"bug","message":"x","email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmitFeedback_NotifierFailureDoesNotFailRequest(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("smtp down"), done: make(chan struct{}, 1)}
	r := newTestRouter(&fakeRepo{}, notifier)

	w := post(t, r, "/api/feedback", `{"category":"suggestion","message":"지도가 좋아요"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite notifier failure, got %d", w.Code)
	}
	<-notifier.done
}

func TestSubmitFeedback_RepoFailure(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	r := newTestRouter(repo, NoopNotifier{})

	w := post(t, r, "/api/feedback", `{"category":"bug","message":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestSubmitFeedback_StripsHTML(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, NoopNotifier{})

	w := post(t, r, "/api/feedback",
		`{"category":"bug","message":"<script>alert(1)</script>지도가 깨져요"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if got := repo.feedback[0].Message; got != "alert(1)지도가 깨져요" {
		t.Fatalf("message not sanitized: %q", got)
	}
}

func TestSubmitContact_Success(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, NoopNotifier{})

	w := post(t, r, "/api/contact", `{"email":"user@example.com","message":"문의드립니다"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.contacts) != 1 || repo.contacts[0].Email != "user@example.com" {
		t.Fatalf("contact not stored: %+v", repo.contacts)
	}
}

func TestSubmitContact_MissingEmail(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, NoopNotifier{})

	w := post(t, r, "/api/contact", `{"message":"문의"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmitContact_InvalidJSON(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, NoopNotifier{})

	w := post(t, r, "/api/contact", `{broken`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
