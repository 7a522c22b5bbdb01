package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/00anuyh/souvenir-backend/pkg/config"
	"github.com/00anuyh/souvenir-backend/pkg/security"
)

func signupConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestSignupHashRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("moon-jar-collector-7", signupConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("moon-jar-collector-7", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("stored credential rejected its own password")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("moon-jar-collector-7", signupConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	for _, guess := range []string{"moon-jar-collector-8", "MOON-JAR-COLLECTOR-7", "moon-jar-collector-7 "} {
		ok, err := security.VerifyPassword(guess, hash)
		if err != nil {
			t.Fatalf("verify %q: %v", guess, err)
		}
		if ok {
			t.Fatalf("near-miss password %q accepted", guess)
		}
	}
}

func TestHashesAreSaltedPerSignup(t *testing.T) {
	first, err := security.HashPassword("shared-password", signupConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := security.HashPassword("shared-password", signupConfig())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two signups with the same password produced identical hashes")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := security.HashPassword("", signupConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyRejectsCorruptStoredHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=32768,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=oops,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=32768,t=1,p=1$!!!$aGFzaA",
	} {
		_, err := security.VerifyPassword("whatever", encoded)
		if !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}
