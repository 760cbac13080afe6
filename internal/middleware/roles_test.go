package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/gin-gonic/gin"
)

func roleGuardedRouter(user *model.User, allowed ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(ContextKeyUser, user)
		}
		c.Next()
	})
	router.GET("/guarded", RequireRoles(allowed...), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestRequireRoles_AllowsMatchingRole(t *testing.T) {
	admin := &model.User{Email: "admin@example.com", Role: model.RoleAdmin}
	router := roleGuardedRouter(admin, model.RoleModerator, model.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for admin, got %d", w.Code)
	}
}

func TestRequireRoles_RejectsOtherRole(t *testing.T) {
	user := &model.User{Email: "user@example.com", Role: model.RoleUser}
	router := roleGuardedRouter(user, model.RoleModerator, model.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for plain user, got %d", w.Code)
	}
}

func TestRequireRoles_RejectsUnauthenticated(t *testing.T) {
	router := roleGuardedRouter(nil, model.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a user, got %d", w.Code)
	}
}
