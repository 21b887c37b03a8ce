/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package auth issues and verifies the bearer tokens that carry a caller's
// user id and role.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/feedchain/feedchain/model"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT body of a FeedChain token.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func New(signingKey, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

// GenerateToken signs a token for userID acting as role.
func (s *Service) GenerateToken(userID, role string, expiresIn time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if !model.IsValidRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := s.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies the signature, expiry, issuer and role of a token
// and returns the principal it names.
func (s *Service) ValidateToken(tokenString string) (model.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return model.Principal{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	if claims.UserID == "" || !model.IsValidRole(claims.Role) {
		return model.Principal{}, fmt.Errorf("%w: missing identity", ErrInvalidToken)
	}

	return model.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
