package dto

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ArticleForm is the multipart form of create and edit; tags arrive as a JSON array string
type ArticleForm struct {
	Title    string `form:"title" binding:"required"`
	Content  string `form:"content" binding:"required"`
	Category string `form:"category"`
	Tags     string `form:"tags"`
}

// ArticleInput is the validated article payload
type ArticleInput struct {
	Title    string
	Content  string
	Category string
	Tags     []string
}

// Input parses the form; malformed tags are a bad request
func (f *ArticleForm) Input() (*ArticleInput, error) {
	tags, err := ParseTags(f.Tags)
	if err != nil {
		return nil, err
	}
	in := &ArticleInput{
		Title:    strings.TrimSpace(f.Title),
		Content:  strings.TrimSpace(f.Content),
		Category: strings.TrimSpace(f.Category),
		Tags:     tags,
	}
	if in.Title == "" || in.Content == "" {
		return nil, domain.ErrInvalidArticle
	}
	return in, nil
}

// ParseTags decodes a JSON array of strings; empty input means no tags
func ParseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, domain.ErrInvalidTags
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListArticlesQuery is the query string of the article feed
type ListArticlesQuery struct {
	Page      int  `form:"page"`
	Limit     int  `form:"limit"`
	IsCreator bool `form:"isCreator"`
}

// Normalize applies defaults and caps the page size
func (q *ListArticlesQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// keep (Page-1)*Limit within int
	if maxPage := math.MaxInt/q.Limit + 1; q.Page > maxPage {
		q.Page = maxPage
	}
}

// Offset is the number of rows skipped before the page
func (q *ListArticlesQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ArticleResult is the outcome of a single-article operation
type ArticleResult struct {
	Status  domain.Status   `json:"status"`
	Message string          `json:"message"`
	Article *domain.Article `json:"article,omitempty"`
}

// ArticleListResult is one page of the feed
type ArticleListResult struct {
	Status  domain.Status     `json:"status"`
	Message string            `json:"message"`
	Items   []*domain.Article `json:"items"`
	Total   int64             `json:"total"`
	Pages   int               `json:"pages"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
}

// PageCount is ceil(total/limit)
func PageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
