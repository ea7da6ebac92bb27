package utils

import "testing"

func TestAccessTokenRoundTrip(t *testing.T) {
	in := Identity{UserID: "u1", Username: "ada", Email: "ada@example.com"}
	tok, err := NewAccessToken("secret", in, 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	out, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != in {
		t.Errorf("identity = %+v, want %+v", out, in)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	expired, _ := NewAccessToken("secret", Identity{UserID: "u1"}, -1)
	forged, _ := NewAccessToken("wrong", Identity{UserID: "u1"}, 15)

	for name, raw := range map[string]string{
		"expired":      expired.Token,
		"wrong secret": forged.Token,
		"garbage":      "not.a.jwt",
		"empty":        "",
	} {
		if _, err := ParseAccessToken("secret", raw); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestRefreshTokensAreUniqueAndHashed(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, _ := NewRefreshToken(7)
	if a.Raw == b.Raw {
		t.Fatal("two refresh tokens collided")
	}
	if len(a.Raw) != 96 {
		t.Errorf("raw length = %d, want 96 hex chars", len(a.Raw))
	}
	if HashRefreshRaw(a.Raw) == a.Raw {
		t.Error("hash must differ from the raw token")
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) {
		t.Error("hash must be deterministic")
	}
}
