package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	"github.com/anandpskerala/ArticleHubBackend/internal/dto"
	"github.com/anandpskerala/ArticleHubBackend/internal/media"
	"github.com/anandpskerala/ArticleHubBackend/internal/middleware"
	"github.com/anandpskerala/ArticleHubBackend/internal/service"
	"github.com/anandpskerala/ArticleHubBackend/pkg/response"
)

// MaxImageSize bounds a single article image
const MaxImageSize = 5 << 20

// ArticleHandler handles article HTTP requests
type ArticleHandler struct {
	articles service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// Create publishes an article from a multipart form with an optional image
// POST /api/article
func (h *ArticleHandler) Create(c *gin.Context) {
	in, ok := bindArticleForm(c)
	if !ok {
		return
	}
	image, closeImage, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeImage()

	userID, _ := middleware.UserID(c)
	result, err := h.articles.Create(c.Request.Context(), userID, in, image)
	writeArticle(c, result, err)
}

// Edit updates an article owned by the caller
// PATCH /api/article/:id
func (h *ArticleHandler) Edit(c *gin.Context) {
	in, ok := bindArticleForm(c)
	if !ok {
		return
	}
	image, closeImage, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeImage()

	userID, _ := middleware.UserID(c)
	result, err := h.articles.Edit(c.Request.Context(), userID, c.Param("id"), in, image)
	writeArticle(c, result, err)
}

// List returns a page of the feed
// GET /api/articles?page=&limit=&isCreator=
func (h *ArticleHandler) List(c *gin.Context) {
	var q dto.ListArticlesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	result, err := h.articles.List(c.Request.Context(), userID, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(result.Items, result.Page, result.Limit, result.Total))
}

// Delete removes an article owned by the caller
// DELETE /api/article/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	h.act(c, h.articles.Delete)
}

// Like PATCH /api/like/:id
func (h *ArticleHandler) Like(c *gin.Context) { h.act(c, h.articles.Like) }

// Unlike DELETE /api/like/:id
func (h *ArticleHandler) Unlike(c *gin.Context) { h.act(c, h.articles.Unlike) }

// Block PATCH /api/block/:id
func (h *ArticleHandler) Block(c *gin.Context) { h.act(c, h.articles.Block) }

// Unblock DELETE /api/block/:id
func (h *ArticleHandler) Unblock(c *gin.Context) { h.act(c, h.articles.Unblock) }

type articleAction func(ctx context.Context, userID, articleID string) (*dto.ArticleResult, error)

func (h *ArticleHandler) act(c *gin.Context, fn articleAction) {
	userID, _ := middleware.UserID(c)
	result, err := fn(c.Request.Context(), userID, c.Param("id"))
	writeArticle(c, result, err)
}

func bindArticleForm(c *gin.Context) (*dto.ArticleInput, bool) {
	var form dto.ArticleForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return nil, false
	}
	in, err := form.Input()
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return in, true
}

// formImage opens the optional "image" part; the returned func closes it
func formImage(c *gin.Context) (*media.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, domain.NewError(domain.KindBadRequest, "Invalid image upload")
	}
	if fh.Size > MaxImageSize {
		return nil, noop, domain.ErrImageTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, noop, domain.ErrUnsupportedFile
	}

	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, noop, domain.Internal(err)
	}
	return &media.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        f,
		Size:        fh.Size,
	}, func() { _ = f.Close() }, nil
}

func writeArticle(c *gin.Context, result *dto.ArticleResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	var data interface{}
	if result.Article != nil {
		data = gin.H{"article": result.Article}
	}
	c.JSON(httpStatus(result.Status), response.SuccessWithMessage(result.Message, data))
}
