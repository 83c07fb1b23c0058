package auth

import (
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "animehub", Duration: time.Hour}

	token, exp, err := ts.Sign()
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if time.Until(exp) < 55*time.Minute {
		t.Fatalf("unexpected expiry: %v", exp)
	}

	claims, err := ts.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != "admin" || claims.Issuer != "animehub" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	ts := TokenService{Secret: []byte("right"), Issuer: "animehub", Duration: time.Hour}
	token, _, err := ts.Sign()
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := TokenService{Secret: []byte("wrong"), Issuer: "animehub", Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected parse to fail with a different secret")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	ts := TokenService{Secret: []byte("s"), Issuer: "i", Duration: time.Hour}
	if _, err := ts.Parse("not-a-token"); err == nil {
		t.Fatal("expected parse failure")
	}
}
