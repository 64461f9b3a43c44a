package di

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/anandpskerala/ArticleHubBackend/internal/handler"
	"github.com/anandpskerala/ArticleHubBackend/pkg/config"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "articlehub", Environment: "development"},
		JWT: config.JWTConfig{
			Secret:          "container-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "articlehub",
			BcryptCost:      bcrypt.MinCost,
		},
		CORS: config.CORSConfig{FrontendURL: "http://localhost:5173/"},
	}
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	c, err := NewContainer(&ContainerConfig{Config: testConfig(), Logger: logger.NewNop()})
	require.NoError(t, err)
	return c
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	_, err := NewContainer(&ContainerConfig{})
	assert.Error(t, err)
}

func TestNewContainer_MemoryDefaults(t *testing.T) {
	c := newTestContainer(t)
	assert.NotNil(t, c.UserRepo)
	assert.NotNil(t, c.ArticleRepo)
	assert.NotNil(t, c.Media)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestContainer(t).Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

// A browser session: register, verify, publish, read the feed, react,
// change the password, log in again, log out.
func TestRouter_SessionScenario(t *testing.T) {
	router := newTestContainer(t).Router()
	jar := map[string]*http.Cookie{}

	send := func(req *http.Request) *httptest.ResponseRecorder {
		for _, c := range jar {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		for _, c := range w.Result().Cookies() {
			if c.MaxAge < 0 {
				delete(jar, c.Name)
				continue
			}
			jar[c.Name] = c
		}
		return w
	}
	sendJSON := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		return send(req)
	}

	w := sendJSON(http.MethodPost, "/api/register", map[string]interface{}{
		"firstName": "Grace",
		"lastName":  "Hopper",
		"email":     "Grace@Example.com",
		"phone":     "5551234",
		"password":  "cobol-forever",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, jar, handler.AccessTokenCookie)
	require.Contains(t, jar, handler.RefreshTokenCookie)

	w = send(httptest.NewRequest(http.MethodPost, "/api/verify", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grace@example.com")

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("title", "Nanoseconds"))
	require.NoError(t, mw.WriteField("content", "A foot of wire."))
	require.NoError(t, mw.WriteField("tags", `["hardware"]`))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/article", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = send(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			Article struct {
				ID string `json:"id"`
			} `json:"article"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.Article.ID
	require.NotEmpty(t, id)

	w = send(httptest.NewRequest(http.MethodPatch, "/api/like/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = send(httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Data []struct {
			ID     string   `json:"id"`
			Likes  []string `json:"likes"`
			Author *struct {
				FirstName string `json:"firstName"`
			} `json:"author"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Data, 1)
	assert.Equal(t, id, feed.Data[0].ID)
	assert.Len(t, feed.Data[0].Likes, 1)
	require.NotNil(t, feed.Data[0].Author)
	assert.Equal(t, "Grace", feed.Data[0].Author.FirstName)

	w = sendJSON(http.MethodPut, "/api/profile", map[string]interface{}{
		"firstName":       "Grace",
		"lastName":        "Hopper",
		"phone":           "5551234",
		"currentPassword": "cobol-forever",
		"newPassword":     "flow-matic",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = sendJSON(http.MethodPost, "/api/login", map[string]string{
		"emailOrPhone": "grace@example.com",
		"password":     "cobol-forever",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = sendJSON(http.MethodPost, "/api/login", map[string]string{
		"emailOrPhone": "grace@example.com",
		"password":     "flow-matic",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(httptest.NewRequest(http.MethodDelete, "/api/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, jar)

	w = send(httptest.NewRequest(http.MethodPost, "/api/verify", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Health(t *testing.T) {
	router := newTestContainer(t).Router()

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
