package feedback

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"loolook_backend/platform/httpkit"
	"loolook_backend/platform/logger"
	"loolook_backend/platform/sanitize"
	"loolook_backend/platform/validator"
)

type Handler struct {
	repo     Repository
	notifier Notifier
	val      *validator.Validator
	log      *logger.Logger
}

func NewHandler(repo Repository, notifier Notifier, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, notifier: notifier, val: val, log: log}
}

// SubmitFeedback handles POST /api/feedback.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid JSON body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "category and message are required", nil)
		return
	}

	req.Message = sanitize.Text(req.Message)
	req.Location = sanitize.TextPtr(req.Location)

	if err := h.repo.InsertFeedback(c.Request.Context(), req); err != nil {
		h.log.DatabaseError("insert feedback", err)
		httpkit.Error(c, 500, "failed to save feedback", nil)
		return
	}

	h.notify(func(ctx context.Context) error {
		return h.notifier.NotifyFeedback(ctx, req)
	})

	httpkit.Created(c, SubmitResult{Success: true, Message: "Feedback submitted successfully"})
}

// SubmitContact handles POST /api/contact.
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid JSON body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "a valid email and a message are required", nil)
		return
	}

	req.Message = sanitize.Text(req.Message)

	if err := h.repo.InsertContact(c.Request.Context(), req); err != nil {
		h.log.DatabaseError("insert contact message", err)
		httpkit.Error(c, 500, "failed to save message", nil)
		return
	}

	h.notify(func(ctx context.Context) error {
		return h.notifier.NotifyContact(ctx, req)
	})

	httpkit.Created(c, SubmitResult{Success: true, Message: "Contact message sent successfully"})
}

// notify runs the admin notification off the request goroutine. A failed
// notification is logged and otherwise ignored.
func (h *Handler) notify(send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			h.log.Error("admin notification failed", "error", err)
		}
	}()
}
