package validation

import (
	"testing"
)

func TestValidateStudentID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"nine digits", "123456789", true},
		{"nine digits with dashes", "123-456-789", true},
		{"nine digits with spaces", "123 456 789", true},
		{"letters stripped before count", "id:123456789", true},
		{"eight digits", "12345678", false},
		{"ten digits", "1234567890", false},
		{"empty", "", false},
		{"letters only", "abcdefghi", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateStudentID(tt.input)
			if res.Valid != tt.valid {
				t.Fatalf("ValidateStudentID(%q).Valid = %v, want %v", tt.input, res.Valid, tt.valid)
			}
			if !res.Valid && res.Message == "" {
				t.Fatalf("invalid result must carry a message")
			}
			if res.Valid && res.Message != "" {
				t.Fatalf("valid result must not carry a message, got %q", res.Message)
			}
		})
	}
}

func TestValidateCampusEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain local part", "a@sce.edu", true},
		{"punctuated local part", "a.b_1@sce.edu", true},
		{"plus tag", "a+tag@sce.edu", true},
		{"wrong domain", "a@other.edu", false},
		{"subdomain", "a@mail.sce.edu", false},
		{"missing local part", "@sce.edu", false},
		{"trailing garbage", "a@sce.edu.com", false},
		{"uppercase domain", "a@SCE.EDU", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateCampusEmail(tt.input)
			if res.Valid != tt.valid {
				t.Fatalf("ValidateCampusEmail(%q).Valid = %v, want %v", tt.input, res.Valid, tt.valid)
			}
		})
	}
}
