package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

const (
	ContextUserID   = "userID"
	ContextStudioID = "studioID"
	ContextUserRole = "userRole"
	ContextTenant   = "tenant"

	// StudioHeader é enviado pelo cliente com o studio ativo da sessão.
	StudioHeader = "X-Studio-ID"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Abort(c, http.StatusUnauthorized, "missing_authorization_header", "Sessão não informada.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_authorization_header", "Cabeçalho de autorização inválido.")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Sessão expirada. Entre novamente.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token_claims", "Sessão inválida.")
			return
		}

		userID, ok1 := claims["sub"].(float64)
		studioID, ok2 := claims["studioId"].(float64)
		role, _ := claims["role"].(string)
		if !ok1 || !ok2 {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token_payload", "Sessão inválida.")
			return
		}

		t, err := tenant.New(uint(studioID), uint(userID), role)
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "tenant_required", "Nenhum studio ativo na sessão.")
			return
		}

		// o studio do cabeçalho precisa bater com o do token
		if h := c.GetHeader(StudioHeader); h != "" {
			if id, err := strconv.ParseUint(h, 10, 64); err != nil || uint(id) != t.StudioID {
				httperr.Abort(c, http.StatusForbidden, "tenant_mismatch", "Studio da requisição diferente da sessão.")
				return
			}
		}

		c.Set(ContextUserID, t.UserID)
		c.Set(ContextStudioID, t.StudioID)
		c.Set(ContextUserRole, t.Role)
		c.Set(ContextTenant, t)

		c.Next()
	}
}

// RequireManager restringe a rota a donos e gerentes.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := Tenant(c)
		if !ok || !t.CanManage() {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "Acesso restrito a gerentes.")
			return
		}
		c.Next()
	}
}

// Tenant lê a capacidade de acesso gravada pelo AuthMiddleware.
func Tenant(c *gin.Context) (tenant.Context, bool) {
	v, ok := c.Get(ContextTenant)
	if !ok {
		return tenant.Context{}, false
	}
	t, ok := v.(tenant.Context)
	return t, ok && t.Valid()
}
