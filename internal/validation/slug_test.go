package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Acme Plumbing", "acme-plumbing"},
		{"punctuation stripped", "Acme & Co.", "acme-co"},
		{"repeated separators collapse", "A --- B", "a-b"},
		{"leading and trailing noise", "  !!Best Roofers!!  ", "best-roofers"},
		{"already a slug", "brightline-electric", "brightline-electric"},
		{"unicode and symbols drop", "Café π Movers", "caf-movers"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugifyLengthCap(t *testing.T) {
	long := ""
	for i := 0; i < 10; i++ {
		long += "abcdefghij"
	}
	slug := Slugify(long)
	assert.LessOrEqual(t, len(slug), 64)
	assert.NoError(t, ValidateProviderSlug(slug))
}

func TestValidateProviderSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"valid slug", "acme-plumbing", false},
		{"valid with digits", "shop-24-7", false},
		{"too short", "ab", true},
		{"uppercase rejected", "Acme", true},
		{"spaces rejected", "acme co", true},
		{"leading hyphen rejected", "-acme", true},
		{"trailing hyphen rejected", "acme-", true},
		{"reserved admin", "admin", true},
		{"reserved me", "me", true},
		{"reserved swagger", "swagger", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProviderSlug(tt.slug)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
