package domain

import "time"

// Article is a published post with its social reaction sets
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	ImageID   string    `json:"imageId"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"authorId"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	BlockedBy []string  `json:"blockedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Author is populated by list queries
	Author *AuthorSummary `json:"author,omitempty"`
}

// AuthorSummary is the public slice of a user attached to listed articles
type AuthorSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// MembershipField names one of the article's user-id sets
type MembershipField string

const (
	FieldLikes     MembershipField = "likes"
	FieldDislikes  MembershipField = "dislikes"
	FieldBlockedBy MembershipField = "blocked_by"
)

// Valid reports whether f is a known set
func (f MembershipField) Valid() bool {
	switch f {
	case FieldLikes, FieldDislikes, FieldBlockedBy:
		return true
	}
	return false
}

// MembershipChange adds the actor to some sets and removes it from others
// in a single atomic update.
type MembershipChange struct {
	Add    []MembershipField
	Remove []MembershipField
}

var (
	// Like moves the actor from dislikes to likes
	Like = MembershipChange{Add: []MembershipField{FieldLikes}, Remove: []MembershipField{FieldDislikes}}
	// Unlike moves the actor from likes to dislikes
	Unlike = MembershipChange{Add: []MembershipField{FieldDislikes}, Remove: []MembershipField{FieldLikes}}
	// Block adds the actor to blocked_by
	Block = MembershipChange{Add: []MembershipField{FieldBlockedBy}}
	// Unblock removes the actor from blocked_by
	Unblock = MembershipChange{Remove: []MembershipField{FieldBlockedBy}}
)

// ArticleFilter narrows article queries
type ArticleFilter struct {
	ID       string
	AuthorID string
}

// Apply returns the sets after applying the change for userID. Repeating a
// change yields the same sets.
func (c MembershipChange) Apply(a *Article, userID string) {
	for _, f := range c.Remove {
		set := a.field(f)
		*set = removeString(*set, userID)
	}
	for _, f := range c.Add {
		set := a.field(f)
		if !containsString(*set, userID) {
			*set = append(*set, userID)
		}
	}
}

func (a *Article) field(f MembershipField) *[]string {
	switch f {
	case FieldLikes:
		return &a.Likes
	case FieldDislikes:
		return &a.Dislikes
	default:
		return &a.BlockedBy
	}
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
