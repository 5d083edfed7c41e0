package repository

import (
	"context"
	"testing"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupListTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.ProviderService{},
	))
	return db
}

func createListProvider(t *testing.T, db *gorm.DB, p models.Provider, services ...string) models.Provider {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	for _, name := range services {
		svc := models.ProviderService{ProviderID: p.ID, Name: name}
		require.NoError(t, db.Create(&svc).Error)
	}
	return p
}

func TestProviderList_VisibilityScope(t *testing.T) {
	t.Parallel()
	db := setupListTestDB(t)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	createListProvider(t, db, models.Provider{
		Slug: "active-co", Email: "a@e.com", BusinessName: "Active Co",
		Status: models.ProviderStatusActive,
	})
	createListProvider(t, db, models.Provider{
		Slug: "pending-co", Email: "p@e.com", BusinessName: "Pending Co",
		Status: models.ProviderStatusPending,
	})
	reason := "spam"
	createListProvider(t, db, models.Provider{
		Slug: "disabled-co", Email: "d@e.com", BusinessName: "Disabled Co",
		Status: models.ProviderStatusDisabled, DisabledReason: &reason,
	})

	t.Run("public query only sees active", func(t *testing.T) {
		page, err := repo.List(ctx, NewPublicListQuery())
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
		require.Len(t, page.Providers, 1)
		assert.Equal(t, "active-co", page.Providers[0].Slug)
	})

	t.Run("admin query spans all statuses", func(t *testing.T) {
		page, err := repo.List(ctx, NewAdminListQuery())
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
	})

	t.Run("admin status filter", func(t *testing.T) {
		q := NewAdminListQuery()
		q.Filters = append(q.Filters, StatusEquals(models.ProviderStatusPending))
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		require.Len(t, page.Providers, 1)
		assert.Equal(t, "pending-co", page.Providers[0].Slug)
	})
}

func TestProviderList_Filters(t *testing.T) {
	t.Parallel()
	db := setupListTestDB(t)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	createListProvider(t, db, models.Provider{
		Slug: "acme-plumbing", Email: "1@e.com", BusinessName: "Acme Plumbing",
		City: "Austin", Status: models.ProviderStatusActive,
		Rating: 4.5, Verified: true,
	}, "plumbing", "handyman")
	createListProvider(t, db, models.Provider{
		Slug: "brightline", Email: "2@e.com", BusinessName: "Brightline Electric",
		City: "Austin", Status: models.ProviderStatusActive,
		Rating: 4.9, Verified: true,
	}, "electrical")
	createListProvider(t, db, models.Provider{
		Slug: "evergreen", Email: "3@e.com", BusinessName: "Evergreen Landscapes",
		City: "Portland", Status: models.ProviderStatusActive,
		Rating: 3.1, Verified: false,
	}, "landscaping", "plumbing")

	list := func(t *testing.T, filters ...ProviderFilter) []models.Provider {
		t.Helper()
		q := NewPublicListQuery()
		q.Filters = filters
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		return page.Providers
	}

	t.Run("name substring is case-insensitive", func(t *testing.T) {
		got := list(t, NameContains("ACME"))
		require.Len(t, got, 1)
		assert.Equal(t, "acme-plumbing", got[0].Slug)
	})

	t.Run("city prefix is case-insensitive", func(t *testing.T) {
		got := list(t, CityPrefix("aus"))
		assert.Len(t, got, 2)
	})

	t.Run("min rating", func(t *testing.T) {
		got := list(t, RatingAtLeast(4.0))
		assert.Len(t, got, 2)
	})

	t.Run("verified only", func(t *testing.T) {
		got := list(t, VerifiedEquals(false))
		require.Len(t, got, 1)
		assert.Equal(t, "evergreen", got[0].Slug)
	})

	t.Run("single tag", func(t *testing.T) {
		got := list(t, ServiceMatch{Mode: MatchAny, Tags: []string{"plumbing"}})
		assert.Len(t, got, 2)
	})

	t.Run("any of several tags", func(t *testing.T) {
		got := list(t, ServiceMatch{Mode: MatchAny, Tags: []string{"plumbing", "electrical"}})
		assert.Len(t, got, 3)
	})

	t.Run("all tags required", func(t *testing.T) {
		got := list(t, ServiceMatch{Mode: MatchAll, Tags: []string{"plumbing", "handyman"}})
		require.Len(t, got, 1)
		assert.Equal(t, "acme-plumbing", got[0].Slug)
	})

	t.Run("single tag agrees across modes", func(t *testing.T) {
		anyGot := list(t, ServiceMatch{Mode: MatchAny, Tags: []string{"plumbing"}})
		allGot := list(t, ServiceMatch{Mode: MatchAll, Tags: []string{"plumbing"}})
		require.Len(t, allGot, len(anyGot))
		for i := range anyGot {
			assert.Equal(t, anyGot[i].Slug, allGot[i].Slug)
		}
	})

	t.Run("tags normalize case and whitespace", func(t *testing.T) {
		got := list(t, ServiceMatch{Mode: MatchAny, Tags: []string{"  PLUMBING "}})
		assert.Len(t, got, 2)
	})

	t.Run("duplicate tags collapse to one", func(t *testing.T) {
		got := list(t, ServiceMatch{Mode: MatchAll, Tags: []string{"plumbing", " Plumbing "}})
		assert.Len(t, got, 2)

		got = list(t, ServiceMatch{Mode: MatchAll, Tags: []string{"plumbing", "handyman", "HANDYMAN"}})
		require.Len(t, got, 1)
		assert.Equal(t, "acme-plumbing", got[0].Slug)
	})

	t.Run("wildcard characters match literally", func(t *testing.T) {
		createListProvider(t, db, models.Provider{
			Slug: "percent-co", Email: "5@e.com", BusinessName: "100% Plumbing",
			City: "San_Antonio", Status: models.ProviderStatusActive,
		})

		got := list(t, NameContains("100% Plumb"))
		require.Len(t, got, 1)
		assert.Equal(t, "percent-co", got[0].Slug)

		// a bare % is not an everything-matcher
		assert.Len(t, list(t, NameContains("%")), 1)

		got = list(t, CityPrefix("San_"))
		require.Len(t, got, 1)
		assert.Equal(t, "percent-co", got[0].Slug)
		assert.Empty(t, list(t, CityPrefix("Sana")))
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		got := list(t, CityPrefix("Austin"), RatingAtLeast(4.8))
		require.Len(t, got, 1)
		assert.Equal(t, "brightline", got[0].Slug)
	})
}

func TestProviderList_SortAndTieBreaks(t *testing.T) {
	t.Parallel()
	db := setupListTestDB(t)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	// Equal ratings force the tie-break chain: verified DESC, then name ASC.
	createListProvider(t, db, models.Provider{
		Slug: "zeta", Email: "z@e.com", BusinessName: "Zeta Works",
		Status: models.ProviderStatusActive, Rating: 4.0, Verified: false,
		CreatedAt: base,
	})
	createListProvider(t, db, models.Provider{
		Slug: "alpha", Email: "al@e.com", BusinessName: "Alpha Works",
		Status: models.ProviderStatusActive, Rating: 4.0, Verified: false,
		CreatedAt: base.Add(time.Hour),
	})
	createListProvider(t, db, models.Provider{
		Slug: "mid", Email: "m@e.com", BusinessName: "Mid Works",
		Status: models.ProviderStatusActive, Rating: 4.0, Verified: true,
		CreatedAt: base.Add(2 * time.Hour),
	})

	slugs := func(page *ProviderPage) []string {
		out := make([]string, 0, len(page.Providers))
		for _, p := range page.Providers {
			out = append(out, p.Slug)
		}
		return out
	}

	t.Run("rating sort falls through to verified then name", func(t *testing.T) {
		q := NewPublicListQuery()
		q.Sort = SortRating
		q.Order = OrderDesc
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"mid", "alpha", "zeta"}, slugs(page))
	})

	t.Run("newest sort uses created_at", func(t *testing.T) {
		page, err := repo.List(ctx, NewPublicListQuery())
		require.NoError(t, err)
		assert.Equal(t, []string{"mid", "alpha", "zeta"}, slugs(page))
	})

	t.Run("name asc", func(t *testing.T) {
		q := NewPublicListQuery()
		q.Sort = SortName
		q.Order = OrderAsc
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, slugs(page))
	})

	t.Run("repeated queries return identical order", func(t *testing.T) {
		q := NewPublicListQuery()
		q.Sort = SortRating
		first, err := repo.List(ctx, q)
		require.NoError(t, err)
		second, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, slugs(first), slugs(second))
	})
}

func TestProviderList_Pagination(t *testing.T) {
	t.Parallel()
	db := setupListTestDB(t)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createListProvider(t, db, models.Provider{
			Slug:         string(rune('a'+i)) + "-co",
			Email:        string(rune('a'+i)) + "@e.com",
			BusinessName: string(rune('A'+i)) + " Co",
			Status:       models.ProviderStatusActive,
		})
	}

	t.Run("page size respected with full total", func(t *testing.T) {
		q := NewPublicListQuery()
		q.Limit = 2
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Len(t, page.Providers, 2)
		assert.EqualValues(t, 5, page.Total)
		assert.Equal(t, 3, page.TotalPages())
	})

	t.Run("pages do not overlap", func(t *testing.T) {
		q := NewPublicListQuery()
		q.Sort = SortName
		q.Order = OrderAsc
		q.Limit = 2

		seen := map[string]bool{}
		for p := 1; p <= 3; p++ {
			q.Page = p
			page, err := repo.List(ctx, q)
			require.NoError(t, err)
			for _, provider := range page.Providers {
				assert.False(t, seen[provider.Slug], "slug %s seen twice", provider.Slug)
				seen[provider.Slug] = true
			}
		}
		assert.Len(t, seen, 5)
	})

	t.Run("out of range page keeps meta", func(t *testing.T) {
		q := NewPublicListQuery()
		q.Page = 99
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, page.Providers)
		assert.EqualValues(t, 5, page.Total)
		assert.Equal(t, 1, page.TotalPages())
	})
}
