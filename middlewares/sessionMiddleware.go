package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	tokenKeyPrefix      = "Token:"
	privilegedKeyPrefix = "Privileged:"
	privilegedCacheTTL  = time.Minute

	ViewOwnersHeader = "x-view-owners"
	ViewOwnersQuery  = "view_owners"
)

// Session is what a token resolves to.
type Session struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
}

// TokenLookup resolves a token. A nil session means the token is unknown.
type TokenLookup func(ctx context.Context, token string) (*Session, error)

// RedisTokenLookup reads "Token:<token>". The value is a Session JSON object
// or a bare user id.
func RedisTokenLookup(_ context.Context, token string) (*Session, error) {
	value, exists, err := config.GetRedisValue(tokenKeyPrefix + token)
	if err != nil || !exists {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(value), &s); err != nil || s.UserId == "" {
		s = Session{UserId: strings.TrimSpace(value)}
	}
	if s.UserId == "" {
		return nil, nil
	}
	return &s, nil
}

// IssueToken stores a new session token in redis.
func IssueToken(s Session, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := config.SetRedisObject(tokenKeyPrefix+token, s, ttl); err != nil {
		return "", err
	}
	return token, nil
}

func SessionMiddleware(lookup TokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		session, err := lookup(c.Request.Context(), token)
		if err != nil || session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, session.UserId)
		ctx = utils.SetUsernameInContext(ctx, session.Username)

		isAdmin, err := privileged(ctx, session.UserId)
		if err != nil {
			config.LogError(config.GetLogger(), "Middlewares", "SessionMiddleware", "privileged lookup", session.UserId, err)
		}
		ctx = utils.SetIsAdminInContext(ctx, isAdmin)
		if isAdmin {
			ctx = utils.SetViewOwnerIdsInContext(ctx, viewOwners(c))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func privileged(ctx context.Context, userId string) (bool, error) {
	var cached bool
	if exists, err := config.GetRedisObject(privilegedKeyPrefix+userId, &cached); err == nil && exists {
		return cached, nil
	}
	db := config.GetDB()
	if db == nil {
		return false, nil
	}
	ok, err := models.IsPrivileged(ctx, db, userId)
	if err != nil {
		return false, err
	}
	_ = config.SetRedisObject(privilegedKeyPrefix+userId, ok, privilegedCacheTTL)
	return ok, nil
}

// ForgetPrivileged drops the cached role of userId after a grant or revoke.
func ForgetPrivileged(userId string) {
	_ = config.RemoveRedisKey(privilegedKeyPrefix + userId)
}

func viewOwners(c *gin.Context) []string {
	raw := c.GetHeader(ViewOwnersHeader)
	if raw == "" {
		raw = c.Query(ViewOwnersQuery)
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return utils.UniqueSlice(ids)
}

// RequireUser rejects requests without a resolved session.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userId, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok || userId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequirePrivileged rejects callers without the privileged role.
func RequirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context()); !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
