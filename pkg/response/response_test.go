package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Body) {
	t.Helper()
	r := gin.New()
	r.GET("/", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestSuccessIncludesFlashes(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		c.Set(FlashSourceKey, FlashSource(func() []Flash {
			return []Flash{{Level: "success", Text: "saved"}}
		}))
		Success(c, gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body.Message)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "saved", body.Messages[0].Text)
}

func TestErrorWithStatus(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		ErrorWithStatus(c, http.StatusBadRequest, "bad input", "field x")
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Equal(t, "field x", body.Details)
}

func TestRedirect(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		Redirect(c, "/cart", nil)
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
	assert.Equal(t, "/cart", body.Redirect)
}

func TestUnauthorizedCarriesLoginURL(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		Unauthorized(c, "/accounts/login?next=/x")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/accounts/login?next=/x", body.Redirect)
}
