package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-platform/creator_service/internal/api/handlers/common"
)

func identityRouter(t *testing.T) (*gin.Engine, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen uuid.UUID
	router := gin.New()
	router.Use(CreatorIdentity())
	router.GET("/probe", func(c *gin.Context) {
		id, err := common.GetCreatorID(c)
		require.NoError(t, err)
		seen = id
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestCreatorIdentityMissingHeader(t *testing.T) {
	router, _ := identityRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing creator identity")
}

func TestCreatorIdentityMalformedHeader(t *testing.T) {
	router, _ := identityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Creator-ID", "not-a-uuid")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid creator identity")
}

func TestCreatorIdentityPopulatesContext(t *testing.T) {
	router, seen := identityRouter(t)

	creatorID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Creator-ID", creatorID.String())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, creatorID, *seen)
}
