package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spinoza1124/emotion-labeling-refactoring/config"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "unit-test-secret-0123456789",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func newAuthRouter(jwtMgr *jwt.Manager) *gin.Engine {
	r := gin.New()
	authorized := r.Group("", JWTAuth(jwtMgr, nil))
	authorized.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": c.GetString("username"),
			"role":     c.GetString("role"),
		})
	})
	authorized.GET("/admin", RoleAuth(model.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestJWTAuthValidToken(t *testing.T) {
	jwtMgr := newTestJWTManager()
	r := newAuthRouter(jwtMgr)

	token, err := jwtMgr.GenerateAccessToken("alice", model.RoleAnnotator)
	if err != nil {
		t.Fatalf("生成 token 失败: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("有效 token 期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestJWTAuthMissingOrMalformedHeader(t *testing.T) {
	r := newAuthRouter(newTestJWTManager())

	cases := []struct {
		name   string
		header string
	}{
		{"缺少认证头", ""},
		{"格式错误", "Token abc"},
		{"非法 token", "Bearer not-a-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("期望 401，实际 %d", w.Code)
			}
		})
	}
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	jwtMgr := newTestJWTManager()
	r := newAuthRouter(jwtMgr)

	refresh, err := jwtMgr.GenerateRefreshToken("alice", model.RoleAnnotator, false)
	if err != nil {
		t.Fatalf("生成 refresh token 失败: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token 不应通过认证，实际 %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	jwtMgr := newTestJWTManager()
	r := newAuthRouter(jwtMgr)

	annotatorToken, _ := jwtMgr.GenerateAccessToken("alice", model.RoleAnnotator)
	adminToken, _ := jwtMgr.GenerateAccessToken("root", model.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+annotatorToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("普通用户访问管理接口期望 403，实际 %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("管理员访问管理接口期望 200，实际 %d", w.Code)
	}
}
