// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package auth verifies session bearer tokens and places the resolved
// session on the request context. Tokens are HS256 JWTs carrying the
// user, the org, and the role claim that authorization enforces on.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tunescale/tunescale/internal/models"
)

// Claims is the token payload. The subject is the user ID.
type Claims struct {
	OrgID string `json:"org"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier parses and validates session tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a verifier over the shared signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify parses the token and returns the session it encodes. Expired,
// malformed, or wrongly-signed tokens fail; missing org or role claims
// fail because downstream scoping depends on them.
func (v *Verifier) Verify(tokenString string) (*models.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.OrgID == "" || claims.Role == "" {
		return nil, errors.New("token missing subject, org, or role claim")
	}

	return &models.Session{
		UserID: claims.Subject,
		OrgID:  claims.OrgID,
		Role:   claims.Role,
	}, nil
}

// Issue mints a token for the session, valid for ttl. Used by tests and
// the bundled token tool.
func (v *Verifier) Issue(session *models.Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		OrgID: session.OrgID,
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
