package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medisense/internal/domain"
)

// ConversationTokenService emite y valida los tokens que dan acceso a una conversación.
type ConversationTokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type ConversationClaims struct {
	ConversationID string `json:"cid"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("conversation token invalid")
	ErrTokenExpired = errors.New("conversation token expired")
)

func NewConversationTokenService(secret string) *ConversationTokenService {
	return &ConversationTokenService{
		secret: []byte(secret),
		issuer: "medisense",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue firma un token que vence junto con la conversación.
func (s *ConversationTokenService) Issue(conversation domain.Conversation) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(conversation.ID) == "" || conversation.ExpiresAt.IsZero() {
		return "", ErrTokenInvalid
	}
	claims := ConversationClaims{
		ConversationID: conversation.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   conversation.ID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(conversation.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *ConversationTokenService) Parse(tokenString string) (ConversationClaims, error) {
	if s == nil || len(s.secret) == 0 {
		return ConversationClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return ConversationClaims{}, ErrTokenInvalid
	}

	var claims ConversationClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ConversationClaims{}, ErrTokenExpired
		}
		return ConversationClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.ConversationID) == "" || claims.Subject != claims.ConversationID {
		return ConversationClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
