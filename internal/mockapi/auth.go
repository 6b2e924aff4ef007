// Package mockapi serves a development copy of the product API the console talks to.
package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
)

const ctxKeyUser = "user"

// Users maps usernames to bcrypt password hashes.
type Users map[string][]byte

// HashUsers hashes plain-text passwords with the given bcrypt cost.
func HashUsers(plain map[string]string, cost int) (Users, error) {
	users := make(Users, len(plain))
	for name, pass := range plain {
		h, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", name, err)
		}
		users[name] = h
	}
	return users, nil
}

// AuthHandler issues and verifies bearer tokens.
type AuthHandler struct {
	users  Users
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthHandler(users Users, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var cred model.Credentials
	if err := c.ShouldBindJSON(&cred); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	hash, ok := h.users[cred.Username]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(cred.Password)) != nil {
		obs.Logger.Info("mock_login_rejected", "username", cred.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	tok, err := h.issue(cred.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token creation failed"})
		return
	}
	c.JSON(http.StatusOK, model.LoginResponse{Token: tok})
}

func (h *AuthHandler) issue(username string) (string, error) {
	now := h.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

func (h *AuthHandler) verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(h.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AuthRequired rejects requests without a valid bearer token.
func (h *AuthHandler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}
		user, err := h.verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(ctxKeyUser, user)
		c.Next()
	}
}
