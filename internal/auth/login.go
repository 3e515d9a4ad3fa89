package auth

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"RedCatch/internal/utils"
)

const maxNameLen = 16

var ErrInvalidToken = errors.New("invalid token")

type GuestRequest struct {
	Name string `json:"name"`
}

// Claims 访客身份：sub 是 handle，name 是昵称
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type Handler struct {
	secret []byte
	ttl    time.Duration
}

// 工厂方法：创建 handler
func NewHandler(secret []byte, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{secret: secret, ttl: ttl}
}

// Issue 签发一个新的访客 handle
func (h *Handler) Issue(name string) (handle, token string, err error) {
	handle = uuid.NewString()
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   handle,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", "", errors.Wrap(err, "sign guest token")
	}
	return handle, token, nil
}

// POST /auth/guest
func (h *Handler) Guest(c *gin.Context) {
	var req GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
		return
	}

	handle, token, err := h.Issue(name)
	if err != nil {
		utils.Log.Error("guest token failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"handle": handle,
		"name":   name,
		"jwt":    token,
	})
}

// ParseToken 校验签名和过期时间
func ParseToken(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, errors.Wrapf(ErrInvalidToken, "%v", err)
	}
	return claims, nil
}
