package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medisense/internal/domain"
)

// ErrNotFound lo devuelven todas las implementaciones cuando la fila no existe.
var ErrNotFound = errors.New("record not found")

type ConversationRepository interface {
	Create(ctx context.Context, conversation domain.Conversation) error
	GetByID(ctx context.Context, id string) (domain.Conversation, error)
}

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

func (r *PgConversationRepository) Create(ctx context.Context, conversation domain.Conversation) error {
	const query = `
		INSERT INTO conversations (id, expires_at, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query,
		conversation.ID,
		conversation.ExpiresAt,
		conversation.CreatedAt,
	)
	return err
}

func (r *PgConversationRepository) GetByID(ctx context.Context, id string) (domain.Conversation, error) {
	const query = `
		SELECT id, expires_at, created_at
		FROM conversations
		WHERE id = $1
	`
	var conversation domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conversation.ID,
		&conversation.ExpiresAt,
		&conversation.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Conversation{}, ErrNotFound
	}
	return conversation, err
}
