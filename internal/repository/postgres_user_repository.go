package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

const pgUniqueViolationCode = "23505"

const userColumns = `id, first_name, last_name, email, phone, dob, password_hash, interests, created_at, updated_at`

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// FindByEmailOrPhone retrieves the user owning either identifier
func (r *PostgresUserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR phone = $2 LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email, phone))
}

// FindByID retrieves a user by ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// FindOne retrieves the user matching every non-empty filter field
func (r *PostgresUserRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	if filter.IsEmpty() {
		return nil, nil
	}
	where, args := userWhere(filter)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, args...))
}

// Create inserts a user
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.DOB,
		user.PasswordHash,
		nonNil(user.Interests),
		user.CreatedAt,
		user.UpdatedAt,
	)
	created, err := r.scanOne(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// Update writes the mutable fields of the matched user
func (r *PostgresUserRepository) Update(ctx context.Context, filter domain.UserFilter, user *domain.User) error {
	if filter.IsEmpty() {
		return domain.ErrUserNotFound
	}
	args := []any{
		user.FirstName,
		user.LastName,
		user.Phone,
		nonNil(user.Interests),
		user.PasswordHash,
		user.UpdatedAt,
	}
	where, whereArgs := userWhereFrom(filter, len(args)+1)
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, interests = $4, password_hash = $5, updated_at = $6
		WHERE ` + where
	tag, err := r.pool.Exec(ctx, query, append(args, whereArgs...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.DOB,
		&user.PasswordHash,
		&user.Interests,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func userWhere(filter domain.UserFilter) (string, []any) {
	return userWhereFrom(filter, 1)
}

// userWhereFrom builds an AND clause numbering placeholders from start
func userWhereFrom(filter domain.UserFilter, start int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, start+len(args)-1))
	}
	add("id", filter.ID)
	add("email", filter.Email)
	add("phone", filter.Phone)
	return strings.Join(conds, " AND "), args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
