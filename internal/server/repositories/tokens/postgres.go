package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var tables = map[models.TokenKind]string{
	models.TokenKindRefresh:       "refresh_tokens",
	models.TokenKindEmail:         "email_tokens",
	models.TokenKindPasswordReset: "password_tokens",
}

// TableFor returns the table backing kind.
func TableFor(kind models.TokenKind) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	return table, nil
}

// PostgresRepository implements Repository for one token table over dbx.DBTX.
type PostgresRepository struct {
	db    dbx.DBTX
	table string
}

// NewPostgresRepository binds a repository to the table of kind. It panics on
// an unknown kind, which is a programming error.
func NewPostgresRepository(db dbx.DBTX, kind models.TokenKind) *PostgresRepository {
	table, err := TableFor(kind)
	if err != nil {
		panic(err)
	}
	return &PostgresRepository{db: db, table: table}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, hashed_token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, r.table)

	t := *token
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, t.HashedToken, t.ExpiresAt).Scan(&t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, hashedToken string) (*models.Token, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, hashed_token, expires_at, created_at
		FROM %s
		WHERE hashed_token = $1
	`, r.table)
	return r.findOne(ctx, query, hashedToken)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Token, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, hashed_token, expires_at, created_at
		FROM %s
		WHERE id = $1
	`, r.table)
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Token, error) {
	t := &models.Token{}
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&t.ID, &t.UserID, &t.HashedToken, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, r.table)
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
