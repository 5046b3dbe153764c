package license

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("secret", "machine-a", "pro", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Machine != "machine-a" || claims.Edition != "pro" {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := CreateToken("secret", "machine-a", "pro", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if _, err := ParseToken("other", token); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := CreateToken("secret", "machine-a", "pro", -time.Hour)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestValidateCommunityFallback(t *testing.T) {
	m := NewManager("")
	edition, err := m.Validate("")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if edition != EditionCommunity {
		t.Fatalf("edition=%q want %q", edition, EditionCommunity)
	}
}

func TestValidateIssuedToken(t *testing.T) {
	m := NewManager("secret")
	token, err := m.Issue("pro", time.Hour)
	if err != nil {
		t.Skipf("machine id unavailable: %v", err)
	}
	edition, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if edition != "pro" {
		t.Fatalf("edition=%q want pro", edition)
	}
}

func TestValidateRejectsForeignMachine(t *testing.T) {
	m := NewManager("secret")
	if _, err := MachineID(); err != nil {
		t.Skipf("machine id unavailable: %v", err)
	}
	token, err := CreateToken("secret", "someone-elses-box", "pro", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if _, err := m.Validate(token); err == nil {
		t.Fatal("token for another machine accepted")
	}
}
