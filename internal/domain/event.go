package domain

import "time"

// EventType names an article lifecycle event
type EventType string

const (
	EventArticleCreated   EventType = "article.created"
	EventArticleUpdated   EventType = "article.updated"
	EventArticleDeleted   EventType = "article.deleted"
	EventArticleLiked     EventType = "article.liked"
	EventArticleDisliked  EventType = "article.disliked"
	EventArticleBlocked   EventType = "article.blocked"
	EventArticleUnblocked EventType = "article.unblocked"
)

// ArticleEvent is published after an article changes
type ArticleEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ArticleID  string    `json:"articleId"`
	AuthorID   string    `json:"authorId,omitempty"`
	ActorID    string    `json:"actorId"`
	OccurredAt time.Time `json:"occurredAt"`
}
