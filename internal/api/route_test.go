package api

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/logger"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/pkg/security"
	"IdeaVault/internal/pkg/testutil"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type proSet map[uint64]bool

func (p proSet) IsPro(_ context.Context, userID uint64) (bool, error) {
	return p[userID], nil
}

func TestFeedRequiresProMembership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testutil.NewRedis(t)
	old := logger.LogWriter
	logger.LogWriter = io.Discard
	t.Cleanup(func() { logger.LogWriter = old })

	r := SetupRouter(&HandlersGroup{Membership: proSet{}}, config.ServerConfig{}, "access")

	call := func(token string) dto.Response {
		req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	assert.Equal(t, response.Unauthorized, call("").Code)

	token, err := security.GenerateToken(9, []string{consts.RoleUser})
	require.NoError(t, err)
	resp := call(token)
	assert.Equal(t, response.PaymentRequired, resp.Code)
	assert.Equal(t, "/pricing", resp.Data.(map[string]any)["redirect"])
}
