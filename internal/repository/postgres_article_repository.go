package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

const articleColumns = `a.id, a.title, a.content, a.image, a.image_id, a.category, a.tags, a.author_id,
	a.likes, a.dislikes, a.blocked_by, a.created_at, a.updated_at`

// PostgresArticleRepository implements ArticleRepository using PostgreSQL
type PostgresArticleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresArticleRepository creates a new PostgresArticleRepository
func NewPostgresArticleRepository(pool *pgxpool.Pool) *PostgresArticleRepository {
	return &PostgresArticleRepository{pool: pool}
}

// Create inserts an article
func (r *PostgresArticleRepository) Create(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	query := `
		INSERT INTO articles (id, title, content, image, image_id, category, tags, author_id, likes, dislikes, blocked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Image,
		article.ImageID,
		article.Category,
		nonNil(article.Tags),
		article.AuthorID,
		nonNil(article.Likes),
		nonNil(article.Dislikes),
		nonNil(article.BlockedBy),
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cloneArticle(article), nil
}

// Update writes the editable fields
func (r *PostgresArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	query := `
		UPDATE articles
		SET title = $2, content = $3, category = $4, tags = $5, image = $6, image_id = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Category,
		nonNil(article.Tags),
		article.Image,
		article.ImageID,
		article.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

// FindByID retrieves an article by ID
func (r *PostgresArticleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	return r.FindOne(ctx, domain.ArticleFilter{ID: id})
}

// FindOne retrieves the first article matching filter
func (r *PostgresArticleRepository) FindOne(ctx context.Context, filter domain.ArticleFilter) (*domain.Article, error) {
	where, args := articleWhere(filter)
	query := `SELECT ` + articleColumns + ` FROM articles a` + where + ` LIMIT 1`

	article, err := scanArticle(r.pool.QueryRow(ctx, query, args...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return article, nil
}

// FindPaginated returns newest first, joined with the author summary
func (r *PostgresArticleRepository) FindPaginated(ctx context.Context, filter domain.ArticleFilter, offset, limit int) ([]*domain.Article, error) {
	if offset < 0 {
		offset = 0
	}
	where, args := articleWhere(filter)
	args = append(args, offset, limit)
	query := fmt.Sprintf(`
		SELECT %s, u.id, u.first_name, u.last_name, u.email
		FROM articles a
		LEFT JOIN users u ON u.id = a.author_id%s
		ORDER BY a.created_at DESC
		OFFSET $%d LIMIT $%d
	`, articleColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]*domain.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows, true)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Count returns how many articles match filter
func (r *PostgresArticleRepository) Count(ctx context.Context, filter domain.ArticleFilter) (int64, error) {
	where, args := articleWhere(filter)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles a`+where, args...).Scan(&n)
	return n, err
}

// ApplyMembership updates every touched set in one statement so concurrent
// reactions never lose writes.
func (r *PostgresArticleRepository) ApplyMembership(ctx context.Context, articleID, userID string, change domain.MembershipChange) (bool, error) {
	var sets []string
	for _, f := range change.Remove {
		if !f.Valid() {
			return false, fmt.Errorf("unknown membership field %q", f)
		}
		sets = append(sets, fmt.Sprintf("%[1]s = array_remove(%[1]s, $2)", f))
	}
	for _, f := range change.Add {
		if !f.Valid() {
			return false, fmt.Errorf("unknown membership field %q", f)
		}
		sets = append(sets, fmt.Sprintf(
			"%[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2) END", f))
	}
	if len(sets) == 0 {
		return false, nil
	}

	query := `UPDATE articles SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, articleID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteOne removes the article matching filter
func (r *PostgresArticleRepository) DeleteOne(ctx context.Context, filter domain.ArticleFilter) (bool, error) {
	if filter == (domain.ArticleFilter{}) {
		return false, nil
	}
	where, args := articleWhere(filter)
	query := `DELETE FROM articles WHERE id IN (SELECT a.id FROM articles a` + where + ` LIMIT 1)`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func articleWhere(filter domain.ArticleFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, fmt.Sprintf("a.id = $%d", len(args)))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("a.author_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanArticle(row pgx.Row, withAuthor bool) (*domain.Article, error) {
	a := &domain.Article{}
	dest := []any{
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Image,
		&a.ImageID,
		&a.Category,
		&a.Tags,
		&a.AuthorID,
		&a.Likes,
		&a.Dislikes,
		&a.BlockedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	var authorID, firstName, lastName, email *string
	if withAuthor {
		dest = append(dest, &authorID, &firstName, &lastName, &email)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if authorID != nil {
		a.Author = &domain.AuthorSummary{
			ID:        *authorID,
			FirstName: deref(firstName),
			LastName:  deref(lastName),
			Email:     deref(email),
		}
	}
	return a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
