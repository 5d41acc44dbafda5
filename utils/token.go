package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

func jwtSecret() []byte {
	return []byte(strings.TrimSpace(os.Getenv("API_SECRET")))
}

// AuthRequired reports whether report routes need a bearer token.
func AuthRequired() bool {
	return len(jwtSecret()) > 0
}

func JwtGenerate(userID int, username string, role string, lifespan time.Duration) (string, error) {
	if !AuthRequired() {
		return "", fmt.Errorf("API_SECRET is not set")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:       userID,
		Username: username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(lifespan).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	return t.SignedString(jwtSecret())
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret(), nil
	})
}
