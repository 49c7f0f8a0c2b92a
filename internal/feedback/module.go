package feedback

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "loolook_backend/internal/http"
	"loolook_backend/platform/config"
	"loolook_backend/platform/logger"
	"loolook_backend/platform/validator"
)

// Module wires the feedback and contact endpoints.
type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, cfg config.EmailConfig, val *validator.Validator, log *logger.Logger) *Module {
	var notifier Notifier = NoopNotifier{}
	if cfg.GetEmailEnabled() {
		notifier = NewSMTPNotifier(cfg, log)
	}
	return &Module{
		handler: NewHandler(NewRepo(pool), notifier, val, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "feedback"
}

// RegisterRoutes mounts the feedback endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/feedback", m.handler.SubmitFeedback)
	ctx.API.POST("/contact", m.handler.SubmitContact)
}

var _ apphttp.Module = (*Module)(nil)
