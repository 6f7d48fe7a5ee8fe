package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain address", "alice@example.com", false},
		{"subdomain", "bob@mail.example.co.uk", false},
		{"empty", "", true},
		{"no at sign", "alice.example.com", true},
		{"spaces", "alice @example.com", true},
		{"too long", strings.Repeat("a", 250) + "@x.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("alice"); err != nil {
		t.Fatalf("expected valid name: %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Fatal("expected error for blank name")
	}
	if err := ValidateName(strings.Repeat("x", 101)); err == nil {
		t.Fatal("expected error for overlong name")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"strong", "correct-horse-battery", false},
		{"too short", "elevenchars", true},
		{"too long", strings.Repeat("x", 73), true},
		{"contains common word", "mypassword123456", true},
		{"contains qwerty", "qwertyuiop-long-one", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}
