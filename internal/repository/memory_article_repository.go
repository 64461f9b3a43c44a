package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

// MemoryArticleRepository implements ArticleRepository in memory.
// Author summaries are resolved through the optional user repository.
type MemoryArticleRepository struct {
	articles map[string]*domain.Article
	users    UserRepository
	mu       sync.RWMutex
}

// NewMemoryArticleRepository creates an empty repository
func NewMemoryArticleRepository(users UserRepository) *MemoryArticleRepository {
	return &MemoryArticleRepository{
		articles: make(map[string]*domain.Article),
		users:    users,
	}
}

// Create stores a copy of article
func (r *MemoryArticleRepository) Create(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := cloneArticle(article)
	r.articles[a.ID] = a
	return cloneArticle(a), nil
}

// Update writes the editable fields
func (r *MemoryArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.articles[article.ID]
	if !ok {
		return domain.ErrArticleNotFound
	}
	existing.Title = article.Title
	existing.Content = article.Content
	existing.Category = article.Category
	existing.Tags = append([]string(nil), article.Tags...)
	existing.Image = article.Image
	existing.ImageID = article.ImageID
	existing.UpdatedAt = article.UpdatedAt
	return nil
}

// FindByID returns the article with id
func (r *MemoryArticleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneArticle(r.articles[id]), nil
}

// FindOne returns the first article matching filter
func (r *MemoryArticleRepository) FindOne(ctx context.Context, filter domain.ArticleFilter) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.articles {
		if matchArticle(a, filter) {
			return cloneArticle(a), nil
		}
	}
	return nil, nil
}

// FindPaginated returns a newest-first page
func (r *MemoryArticleRepository) FindPaginated(ctx context.Context, filter domain.ArticleFilter, offset, limit int) ([]*domain.Article, error) {
	r.mu.RLock()
	matched := make([]*domain.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if matchArticle(a, filter) {
			matched = append(matched, cloneArticle(a))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) || limit <= 0 {
		return []*domain.Article{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[offset:end]

	if r.users != nil {
		for _, a := range page {
			u, err := r.users.FindByID(ctx, a.AuthorID)
			if err != nil {
				return nil, err
			}
			if u != nil {
				a.Author = &domain.AuthorSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
			}
		}
	}
	return page, nil
}

// Count returns how many articles match filter
func (r *MemoryArticleRepository) Count(ctx context.Context, filter domain.ArticleFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, a := range r.articles {
		if matchArticle(a, filter) {
			n++
		}
	}
	return n, nil
}

// ApplyMembership applies change under the write lock
func (r *MemoryArticleRepository) ApplyMembership(ctx context.Context, articleID, userID string, change domain.MembershipChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[articleID]
	if !ok {
		return false, nil
	}
	change.Apply(a, userID)
	return true, nil
}

// DeleteOne removes the first article matching filter
func (r *MemoryArticleRepository) DeleteOne(ctx context.Context, filter domain.ArticleFilter) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if filter == (domain.ArticleFilter{}) {
		return false, nil
	}
	for id, a := range r.articles {
		if matchArticle(a, filter) {
			delete(r.articles, id)
			return true, nil
		}
	}
	return false, nil
}

func matchArticle(a *domain.Article, filter domain.ArticleFilter) bool {
	if filter.ID != "" && a.ID != filter.ID {
		return false
	}
	if filter.AuthorID != "" && a.AuthorID != filter.AuthorID {
		return false
	}
	return true
}

func cloneArticle(a *domain.Article) *domain.Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	c.Likes = append([]string(nil), a.Likes...)
	c.Dislikes = append([]string(nil), a.Dislikes...)
	c.BlockedBy = append([]string(nil), a.BlockedBy...)
	if a.Author != nil {
		author := *a.Author
		c.Author = &author
	}
	return &c
}
