package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kiosk-complaint-api/internal/access"
	"github.com/noah-isme/kiosk-complaint-api/internal/service"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
)

const testHeader = "X-Kiosk-Session"

type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func newGuardedRouter(t *testing.T) (*gin.Engine, *session.HandleCodec, *session.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	codec := session.NewHandleCodec("test-secret")
	registry := session.NewRegistry()

	router := gin.New()
	router.Use(WithResponseMeta())
	scoped := router.Group("/", KioskSession(codec, registry, testHeader), AuditActor())
	scoped.GET("/mine", RequireSession(), func(c *gin.Context) {
		actor := service.ActorFromContext(c.Request.Context())
		c.String(http.StatusOK, actor.SessionID)
	})
	gates := access.NewGates()
	scoped.GET("/console", RequireAdministrator(gates), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, codec, registry
}

func perform(router *gin.Engine, path, handle string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if handle != "" {
		req.Header.Set(testHeader, handle)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestKioskSessionRejectsMissingAndStaleHandles(t *testing.T) {
	router, codec, registry := newGuardedRouter(t)

	rec, _ := perform(router, "/mine", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = perform(router, "/mine", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	id, _ := registry.Open()
	handle, err := codec.Encode(id)
	require.NoError(t, err)
	registry.Close(id)
	rec, env := perform(router, "/mine", handle)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MessageSessionMissing, env.Error.Message)
}

func TestRequireSessionRedirectsAnonymousToLogin(t *testing.T) {
	router, codec, registry := newGuardedRouter(t)
	id, _ := registry.Open()
	handle, err := codec.Encode(id)
	require.NoError(t, err)

	rec, env := perform(router, "/mine", handle)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "login", env.Meta[MetaRedirect])
}

func TestRequireSessionAllowsSignedInCitizen(t *testing.T) {
	router, codec, registry := newGuardedRouter(t)
	id, state := registry.Open()
	require.NoError(t, state.SetIdentity("김민수", "+821012345678"))
	handle, err := codec.Encode(id)
	require.NoError(t, err)

	rec, _ := perform(router, "/mine", handle)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Body.String())
}

func TestRequireAdministratorWarnsAndRedirectsToKiosk(t *testing.T) {
	router, codec, registry := newGuardedRouter(t)
	id, state := registry.Open()
	require.NoError(t, state.SetIdentity("김민수", "+821012345678"))
	handle, err := codec.Encode(id)
	require.NoError(t, err)

	rec, env := perform(router, "/console", handle)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "kiosk", env.Meta[MetaRedirect])
	assert.Equal(t, "관리자 권한이 필요합니다.", env.Meta[MetaWarning])

	rec, env = perform(router, "/console", handle)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "kiosk", env.Meta[MetaRedirect])
	assert.NotContains(t, env.Meta, MetaWarning)

	state.Elevate()
	rec, _ = perform(router, "/console", handle)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdministratorDoesNotNeedIdentity(t *testing.T) {
	router, codec, registry := newGuardedRouter(t)
	id, state := registry.Open()
	state.Elevate()
	handle, err := codec.Encode(id)
	require.NoError(t, err)

	rec, _ := perform(router, "/console", handle)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdministratorWarnsAgainAfterIdentityChange(t *testing.T) {
	router, codec, registry := newGuardedRouter(t)
	id, state := registry.Open()
	require.NoError(t, state.SetIdentity("김민수", "+821012345678"))
	handle, err := codec.Encode(id)
	require.NoError(t, err)

	_, env := perform(router, "/console", handle)
	assert.Equal(t, access.AdminRequiredMessage, env.Meta[MetaWarning])

	require.NoError(t, state.SetIdentity("이영희", "+821099998888"))
	_, env = perform(router, "/console", handle)
	assert.Equal(t, access.AdminRequiredMessage, env.Meta[MetaWarning])
}
