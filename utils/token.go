package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// Sessions are self-contained: identity and role live in the signed claims,
// nothing is stored server-side.
const defaultTokenLifespanHours = 1

func tokenLifespanHours() int {
	v := os.Getenv("TOKEN_HOUR_LIFESPAN")
	if v == "" {
		return defaultTokenLifespanHours
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultTokenLifespanHours
	}
	return n
}

func JwtGenerate(userID int, email string, role string) (string, error) {
	lifespan := tokenLifespanHours()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:    userID,
		Email: email,
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour * time.Duration(lifespan)).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	token, err := t.SignedString(config.GetJwtSecret())
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidate(token string) (*JwtCustomClaim, error) {
	claims := &JwtCustomClaim{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return config.GetJwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
