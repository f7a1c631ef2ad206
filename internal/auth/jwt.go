package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrMissingJWTSecret    = errors.New("JWT_SECRET is not set")
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token is expired")
)

const DefaultSessionDuration = 30 * 24 * time.Hour

type SessionTokenManagerInterface interface {
	GenerateSessionJWT(sessionID string, duration time.Duration) (string, error)
	ValidateSessionToken(tokenString string) (string, error)
}

type SessionTokenCustomClaims struct {
	SessionID string `json:"session_id"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret string
}

func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}
	return &JWTManager{secret: secret}, nil
}

func (j *JWTManager) GenerateSessionJWT(sessionID string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionTokenCustomClaims{
		SessionID: sessionID,
		StandardClaims: jwt.StandardClaims{
			Subject:   sessionID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionTokenCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			if validationErr.Errors&(jwt.ValidationErrorExpired) != 0 {
				return "", ErrExpiredSessionToken
			}
		}
		return "", ErrInvalidSessionToken
	}

	claims, ok := token.Claims.(*SessionTokenCustomClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidSessionToken
	}

	return claims.SessionID, nil
}
