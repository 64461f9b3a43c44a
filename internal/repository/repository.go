package repository

import (
	"context"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

// UserRepository is the credential store. Lookups return (nil, nil) when
// nothing matches; unique email/phone violations surface as
// domain.ErrUserAlreadyExists.
type UserRepository interface {
	// FindByEmailOrPhone matches either field in a single query
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update writes the mutable profile and credential fields of the matched user
	Update(ctx context.Context, filter domain.UserFilter, user *domain.User) error
}

// ArticleRepository persists articles and their reaction sets
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) (*domain.Article, error)
	// Update writes the editable fields of the article with article.ID
	Update(ctx context.Context, article *domain.Article) error
	FindByID(ctx context.Context, id string) (*domain.Article, error)
	FindOne(ctx context.Context, filter domain.ArticleFilter) (*domain.Article, error)
	// FindPaginated returns newest first with the author summary populated
	FindPaginated(ctx context.Context, filter domain.ArticleFilter, offset, limit int) ([]*domain.Article, error)
	Count(ctx context.Context, filter domain.ArticleFilter) (int64, error)
	// ApplyMembership applies change for userID atomically; false when no article matched
	ApplyMembership(ctx context.Context, articleID, userID string, change domain.MembershipChange) (bool, error)
	// DeleteOne removes the matched article; false when nothing matched
	DeleteOne(ctx context.Context, filter domain.ArticleFilter) (bool, error)
}
