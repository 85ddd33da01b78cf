package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// OperatorRepository looks up operator accounts for the JWT login flow.
type OperatorRepository struct {
	db *sqlx.DB
}

// NewOperatorRepository constructs an OperatorRepository.
func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// FindByUsername loads an operator account by its login name.
func (r *OperatorRepository) FindByUsername(ctx context.Context, username string) (*Operator, error) {
	const query = `SELECT id, username, password_hash, created_at FROM operators WHERE username = $1`
	var op Operator
	if err := r.db.GetContext(ctx, &op, query, username); err != nil {
		return nil, fmt.Errorf("find operator by username: %w", err)
	}
	return &op, nil
}
