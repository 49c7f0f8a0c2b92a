package feedback

import (
	"context"
	"fmt"
	"html"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"loolook_backend/platform/config"
	"loolook_backend/platform/logger"
)

// categoryLabels maps feedback categories to the Korean labels used in
// admin notification subjects.
var categoryLabels = map[string]string{
	"toilet_report": "화장실 제보",
	"correction":    "정보 수정",
	"bug":           "버그 신고",
	"suggestion":    "기능 제안",
}

// Notifier sends admin notifications for new submissions. Delivery is
// best effort; callers must never fail a request on a notify error.
type Notifier interface {
	NotifyFeedback(ctx context.Context, req FeedbackRequest) error
	NotifyContact(ctx context.Context, req ContactRequest) error
}

// NoopNotifier is used when email is not configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyFeedback(ctx context.Context, req FeedbackRequest) error { return nil }
func (NoopNotifier) NotifyContact(ctx context.Context, req ContactRequest) error   { return nil }

var _ Notifier = NoopNotifier{}

// SMTPNotifier delivers admin notifications over SMTP.
type SMTPNotifier struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func NewSMTPNotifier(cfg config.EmailConfig, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log}
}

var _ Notifier = (*SMTPNotifier)(nil)

func (n *SMTPNotifier) NotifyFeedback(ctx context.Context, req FeedbackRequest) error {
	label := categoryLabels[req.Category]
	body := fmt.Sprintf("<h2>새로운 %s</h2><p><strong>카테고리:</strong> %s</p>", label, label)
	if req.Location != nil {
		body += fmt.Sprintf("<p><strong>위치:</strong> %s</p>", html.EscapeString(*req.Location))
	}
	body += fmt.Sprintf("<p><strong>내용:</strong></p><p style=\"white-space: pre-wrap;\">%s</p>", html.EscapeString(req.Message))
	if req.Email != nil {
		body += fmt.Sprintf("<p><strong>제보자 이메일:</strong> %s</p>", html.EscapeString(*req.Email))
	} else {
		body += "<p><strong>제보자 이메일:</strong> 없음</p>"
	}
	return n.send(ctx, fmt.Sprintf("[LooLook] 새로운 %s 제보", label), body)
}

func (n *SMTPNotifier) NotifyContact(ctx context.Context, req ContactRequest) error {
	body := fmt.Sprintf(
		"<h2>새로운 Contact 문의</h2><p><strong>보낸 사람:</strong> %s</p><p><strong>내용:</strong></p><p style=\"white-space: pre-wrap;\">%s</p>",
		html.EscapeString(req.Email), html.EscapeString(req.Message))
	return n.send(ctx, "[LooLook] 새로운 Contact 문의", body)
}

func (n *SMTPNotifier) send(ctx context.Context, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(n.cfg.GetEmailFromName(), n.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(n.cfg.GetAdminEmail()); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(n.cfg.GetSMTPHost(),
		gomail.WithPort(n.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.cfg.GetSMTPUsername()),
		gomail.WithPassword(n.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
