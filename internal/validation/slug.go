package validation

import (
	"regexp"
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/models"
)

var providerSlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,64}$`)

var reservedProviderSlugs = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"auth":      {},
	"providers": {},
	"inquiries": {},
	"users":     {},
	"sessions":  {},
	"settings":  {},
	"me":        {},
	"login":     {},
	"signup":    {},
	"logout":    {},
	"swagger":   {},
	"metrics":   {},
	"health":    {},
}

// ValidateProviderSlug validates provider slug format and reserved names.
func ValidateProviderSlug(slug string) error {
	if !providerSlugRegex.MatchString(slug) {
		return models.NewValidationError("Slug must be 3-64 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return models.NewValidationError("Slug cannot start or end with a hyphen")
	}

	if _, exists := reservedProviderSlugs[slug]; exists {
		return models.NewValidationError("Slug is reserved")
	}

	return nil
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a business name.
// "Acme & Co." -> "acme-co". Collision suffixing is the caller's job.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 64 {
		slug = strings.Trim(slug[:64], "-")
	}
	return slug
}
