package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	"github.com/anandpskerala/ArticleHubBackend/internal/dto"
	"github.com/anandpskerala/ArticleHubBackend/internal/media"
	"github.com/anandpskerala/ArticleHubBackend/internal/repository"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
	"github.com/anandpskerala/ArticleHubBackend/pkg/telemetry"
)

// Article result messages
const (
	MsgArticleCreated   = "Article created"
	MsgArticleUpdated   = "Article updated"
	MsgArticleDeleted   = "Article deleted"
	MsgArticleLiked     = "Article Liked"
	MsgArticleDisliked  = "Article Disliked"
	MsgArticleBlocked   = "Article blocked"
	MsgArticleUnblocked = "Article unblocked"
)

// ArticleService publishes articles and records reactions to them
type ArticleService interface {
	// Create stores a new article; image is optional
	Create(ctx context.Context, authorID string, in *dto.ArticleInput, image *media.Upload) (*dto.ArticleResult, error)
	// Edit replaces the editable fields; only the author may edit
	Edit(ctx context.Context, userID, articleID string, in *dto.ArticleInput, image *media.Upload) (*dto.ArticleResult, error)
	// List returns a newest-first page, optionally only the caller's articles
	List(ctx context.Context, userID string, q dto.ListArticlesQuery) (*dto.ArticleListResult, error)
	// Delete removes an article owned by userID together with its image
	Delete(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error)
	Like(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error)
	Unlike(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error)
	Block(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error)
	Unblock(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error)
}

type articleService struct {
	articles  repository.ArticleRepository
	media     media.Store
	publisher EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewArticleService creates an ArticleService; a nil publisher drops events
func NewArticleService(articles repository.ArticleRepository, store media.Store, publisher EventPublisher, log *logger.Logger) ArticleService {
	if publisher == nil {
		publisher = NoopEventPublisher{}
	}
	if log == nil {
		log = logger.Get()
	}
	return &articleService{
		articles:  articles,
		media:     store,
		publisher: publisher,
		log:       log.With(zap.String("component", "article")),
		now:       time.Now,
	}
}

func (s *articleService) Create(ctx context.Context, authorID string, in *dto.ArticleInput, image *media.Upload) (*dto.ArticleResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.article.create")
	defer span.End()

	now := s.now()
	article := &domain.Article{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Tags:      in.Tags,
		AuthorID:  authorID,
		Likes:     []string{},
		Dislikes:  []string{},
		BlockedBy: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if image != nil {
		obj, err := s.upload(ctx, image)
		if err != nil {
			return nil, s.fail(ctx, span, "create", err)
		}
		article.Image, article.ImageID = obj.URL, obj.ID
	}

	created, err := s.articles.Create(ctx, article)
	if err != nil {
		s.destroyImage(ctx, article.ImageID)
		return nil, s.fail(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.String("article.id", created.ID))
	s.publish(ctx, domain.EventArticleCreated, created.ID, authorID, authorID)

	return &dto.ArticleResult{Status: domain.StatusCreated, Message: MsgArticleCreated, Article: created}, nil
}

func (s *articleService) Edit(ctx context.Context, userID, articleID string, in *dto.ArticleInput, image *media.Upload) (*dto.ArticleResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.article.edit")
	defer span.End()
	span.SetAttributes(attribute.String("article.id", articleID))

	existing, err := s.articles.FindOne(ctx, domain.ArticleFilter{ID: articleID, AuthorID: userID})
	if err != nil {
		return nil, s.fail(ctx, span, "edit", err)
	}
	if existing == nil {
		return nil, s.fail(ctx, span, "edit", domain.ErrArticleNotFound)
	}

	updated := *existing
	updated.Title = in.Title
	updated.Content = in.Content
	updated.Category = in.Category
	updated.Tags = in.Tags
	updated.UpdatedAt = s.now()

	if image != nil {
		obj, err := s.upload(ctx, image)
		if err != nil {
			return nil, s.fail(ctx, span, "edit", err)
		}
		updated.Image, updated.ImageID = obj.URL, obj.ID
	}

	if err := s.articles.Update(ctx, &updated); err != nil {
		if image != nil {
			s.destroyImage(ctx, updated.ImageID)
		}
		return nil, s.fail(ctx, span, "edit", err)
	}
	if image != nil {
		s.destroyImage(ctx, existing.ImageID)
	}

	s.publish(ctx, domain.EventArticleUpdated, articleID, userID, userID)

	return &dto.ArticleResult{Status: domain.StatusOK, Message: MsgArticleUpdated, Article: &updated}, nil
}

func (s *articleService) List(ctx context.Context, userID string, q dto.ListArticlesQuery) (*dto.ArticleListResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.article.list")
	defer span.End()

	q.Normalize()
	filter := domain.ArticleFilter{}
	if q.IsCreator {
		filter.AuthorID = userID
	}
	span.SetAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("limit", q.Limit),
		attribute.Bool("is_creator", q.IsCreator),
	)

	items, err := s.articles.FindPaginated(ctx, filter, q.Offset(), q.Limit)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}
	total, err := s.articles.Count(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}
	if items == nil {
		items = []*domain.Article{}
	}

	return &dto.ArticleListResult{
		Status: domain.StatusOK,
		Items:  items,
		Total:  total,
		Pages:  dto.PageCount(total, q.Limit),
		Page:   q.Page,
		Limit:  q.Limit,
	}, nil
}

func (s *articleService) Delete(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.article.delete")
	defer span.End()
	span.SetAttributes(attribute.String("article.id", articleID))

	filter := domain.ArticleFilter{ID: articleID, AuthorID: userID}
	existing, err := s.articles.FindOne(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, span, "delete", err)
	}
	if existing == nil {
		return nil, s.fail(ctx, span, "delete", domain.ErrArticleNotFound)
	}

	deleted, err := s.articles.DeleteOne(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, span, "delete", err)
	}
	if !deleted {
		return nil, s.fail(ctx, span, "delete", domain.ErrArticleNotFound)
	}
	s.destroyImage(ctx, existing.ImageID)

	s.publish(ctx, domain.EventArticleDeleted, articleID, userID, userID)

	return &dto.ArticleResult{Status: domain.StatusOK, Message: MsgArticleDeleted}, nil
}

func (s *articleService) Like(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error) {
	return s.react(ctx, "like", userID, articleID, domain.Like, domain.EventArticleLiked, MsgArticleLiked)
}

func (s *articleService) Unlike(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error) {
	return s.react(ctx, "unlike", userID, articleID, domain.Unlike, domain.EventArticleDisliked, MsgArticleDisliked)
}

func (s *articleService) Block(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error) {
	return s.react(ctx, "block", userID, articleID, domain.Block, domain.EventArticleBlocked, MsgArticleBlocked)
}

func (s *articleService) Unblock(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error) {
	return s.react(ctx, "unblock", userID, articleID, domain.Unblock, domain.EventArticleUnblocked, MsgArticleUnblocked)
}

func (s *articleService) react(ctx context.Context, op, userID, articleID string, change domain.MembershipChange, event domain.EventType, msg string) (*dto.ArticleResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.article."+op)
	defer span.End()
	span.SetAttributes(attribute.String("article.id", articleID))

	ok, err := s.articles.ApplyMembership(ctx, articleID, userID, change)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	if !ok {
		return nil, s.fail(ctx, span, op, domain.ErrArticleNotFound)
	}

	s.publish(ctx, event, articleID, "", userID)

	return &dto.ArticleResult{Status: domain.StatusOK, Message: msg}, nil
}

func (s *articleService) upload(ctx context.Context, image *media.Upload) (*media.Object, error) {
	obj, err := s.media.Upload(ctx, image)
	if errors.Is(err, media.ErrEmptyUpload) {
		return nil, domain.ErrEmptyImage
	}
	return obj, err
}

// destroyImage removes a replaced or orphaned image; failures only leak storage
func (s *articleService) destroyImage(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.media.Destroy(ctx, id); err != nil {
		s.log.WarnContext(ctx, "failed to destroy article image", zap.String("image_id", id), zap.Error(err))
	}
}

func (s *articleService) publish(ctx context.Context, typ domain.EventType, articleID, authorID, actorID string) {
	event := &domain.ArticleEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		ArticleID:  articleID,
		AuthorID:   authorID,
		ActorID:    actorID,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish article event",
			zap.String("event_type", string(typ)),
			zap.String("article_id", articleID),
			zap.Error(err),
		)
	}
}

func (s *articleService) fail(ctx context.Context, span trace.Span, op string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Kind != domain.KindInternal {
		span.SetStatus(codes.Error, appErr.Message)
		return appErr
	}

	telemetry.RecordError(span, err)
	s.log.ErrorContext(ctx, "article operation failed", zap.String("op", op), zap.Error(err))
	if appErr != nil {
		return appErr
	}
	return domain.Internal(err)
}
