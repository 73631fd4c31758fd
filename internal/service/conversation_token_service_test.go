package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medisense/internal/domain"
)

func testConversation(expiresIn time.Duration) domain.Conversation {
	now := time.Now().UTC()
	return domain.Conversation{ID: "conv-1", CreatedAt: now, ExpiresAt: now.Add(expiresIn)}
}

func TestConversationTokenService_RoundTrip(t *testing.T) {
	svc := NewConversationTokenService("secret")
	token, err := svc.Issue(testConversation(time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ConversationID != "conv-1" || claims.Issuer != "medisense" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestConversationTokenService_Expired(t *testing.T) {
	svc := NewConversationTokenService("secret")
	token, err := svc.Issue(testConversation(time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestConversationTokenService_Rejects(t *testing.T) {
	svc := NewConversationTokenService("secret")
	other := NewConversationTokenService("other-secret")
	foreign, _ := other.Issue(testConversation(time.Hour))

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, ConversationClaims{
		ConversationID: "conv-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "conv-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	wrongIssuerToken, _ := wrongIssuer.SignedString([]byte("secret"))

	mismatch := jwt.NewWithClaims(jwt.SigningMethodHS256, ConversationClaims{
		ConversationID: "conv-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "medisense",
			Subject:   "conv-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	mismatchToken, _ := mismatch.SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"empty":           "  ",
		"garbage":         "not-a-jwt",
		"foreign secret":  foreign,
		"wrong issuer":    wrongIssuerToken,
		"subject differs": mismatchToken,
	} {
		if _, err := svc.Parse(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
}

func TestConversationTokenService_NoSecret(t *testing.T) {
	svc := NewConversationTokenService("")
	if _, err := svc.Issue(testConversation(time.Hour)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without secret, got %v", err)
	}
	if _, err := NewConversationTokenService("secret").Issue(domain.Conversation{ID: "c"}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without expiry, got %v", err)
	}
}
