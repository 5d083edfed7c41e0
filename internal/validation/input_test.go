package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid password", "Str0ng!password", ""},
		{"too short", "Sh0rt!pass", "at least 12 characters"},
		{"too long", strings.Repeat("Aa1", 50), "must not exceed 128"},
		{"no uppercase", "all0lowercase!!", "uppercase"},
		{"no lowercase", "ALL0UPPERCASE!!", "lowercase"},
		{"no digit", "NoDigitsAtAll!!", "digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "user@example.com", false},
		{"valid with plus", "user+tag@example.co.uk", false},
		{"missing at", "userexample.com", true},
		{"missing domain", "user@", true},
		{"missing tld", "user@example", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 250) + "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUSState(t *testing.T) {
	assert.NoError(t, ValidateUSState(""))
	assert.NoError(t, ValidateUSState("TX"))
	assert.Error(t, ValidateUSState("tx"))
	assert.Error(t, ValidateUSState("Texas"))
	assert.Error(t, ValidateUSState("T"))
}
