package feedback

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository appends feedback and contact rows. Both tables are
// append-only; there is no read path in the API.
type Repository interface {
	InsertFeedback(ctx context.Context, req FeedbackRequest) error
	InsertContact(ctx context.Context, req ContactRequest) error
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) InsertFeedback(ctx context.Context, req FeedbackRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO feedback (category, message, email, location, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		req.Category, req.Message, req.Email, req.Location)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *Repo) InsertContact(ctx context.Context, req ContactRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contact_messages (email, message, created_at)
		VALUES ($1, $2, NOW())`,
		req.Email, req.Message)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
