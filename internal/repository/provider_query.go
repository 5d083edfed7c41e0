package repository

import (
	"fmt"
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"gorm.io/gorm"
)

// ServiceMatchMode selects how multiple service tags are combined.
type ServiceMatchMode string

const (
	MatchAny ServiceMatchMode = "any"
	MatchAll ServiceMatchMode = "all"
)

// ProviderSortKey is a whitelisted sort column for provider listings.
type ProviderSortKey string

const (
	SortNewest   ProviderSortKey = "newest"
	SortName     ProviderSortKey = "name"
	SortRating   ProviderSortKey = "rating"
	SortVerified ProviderSortKey = "verified"
)

// SortOrder is the direction applied to the primary sort key.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// ProviderFilter is one predicate of a provider listing query. All filters
// on a query are combined with AND.
type ProviderFilter interface {
	apply(tx *gorm.DB) *gorm.DB
}

// likeEscaper neutralizes LIKE metacharacters so user input matches
// literally. Both text filters pair it with an explicit ESCAPE clause.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NameContains matches providers whose business name contains the given
// substring, case-insensitively and literally.
type NameContains string

func (f NameContains) apply(tx *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(string(f))) + "%"
	return tx.Where(`LOWER(business_name) LIKE ? ESCAPE '\'`, pattern)
}

// CityPrefix matches providers whose city starts with the given prefix,
// case-insensitively and literally.
type CityPrefix string

func (f CityPrefix) apply(tx *gorm.DB) *gorm.DB {
	pattern := likeEscaper.Replace(strings.ToLower(string(f))) + "%"
	return tx.Where(`LOWER(city) LIKE ? ESCAPE '\'`, pattern)
}

// RatingAtLeast matches providers with rating >= the given value.
type RatingAtLeast float64

func (f RatingAtLeast) apply(tx *gorm.DB) *gorm.DB {
	return tx.Where("rating >= ?", float64(f))
}

// VerifiedEquals matches providers by their verified flag.
type VerifiedEquals bool

func (f VerifiedEquals) apply(tx *gorm.DB) *gorm.DB {
	return tx.Where("verified = ?", bool(f))
}

// StatusEquals matches providers by status. Only privileged (admin) queries
// carry this filter; public queries are always pinned to active.
type StatusEquals models.ProviderStatus

func (f StatusEquals) apply(tx *gorm.DB) *gorm.DB {
	return tx.Where("status = ?", string(f))
}

// ServiceMatch matches providers by their service tags. Tags are matched
// exactly and case-insensitively via a normalized join table; MatchAny keeps
// providers offering at least one tag, MatchAll requires every tag.
type ServiceMatch struct {
	Mode ServiceMatchMode
	Tags []string
}

func (f ServiceMatch) apply(tx *gorm.DB) *gorm.DB {
	// Dedupe after normalization: "plumbing, Plumbing" is the tag set
	// {plumbing}, and MatchAll counts distinct names against len(tags).
	tags := make([]string, 0, len(f.Tags))
	seen := make(map[string]struct{}, len(f.Tags))
	for _, t := range f.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		return tx
	}
	// Subqueries instead of joins keep result rows and counts duplicate-free.
	if len(tags) == 1 {
		return tx.Where("id IN (SELECT provider_id FROM provider_services WHERE name = ?)", tags[0])
	}
	if f.Mode == MatchAll {
		return tx.Where(
			"id IN (SELECT provider_id FROM provider_services WHERE name IN ? GROUP BY provider_id HAVING COUNT(DISTINCT name) = ?)",
			tags, len(tags),
		)
	}
	return tx.Where("id IN (SELECT provider_id FROM provider_services WHERE name IN ?)", tags)
}

// ProviderListQuery is a fully validated provider listing request. Build one
// with NewPublicListQuery or NewAdminListQuery; the zero value is unusable on
// purpose so the active-only visibility rule cannot be skipped by accident.
type ProviderListQuery struct {
	Filters []ProviderFilter
	Sort    ProviderSortKey
	Order   SortOrder
	Page    int
	Limit   int

	allStatuses bool
}

// NewPublicListQuery returns a query restricted to active providers.
func NewPublicListQuery() ProviderListQuery {
	return ProviderListQuery{
		Sort:  SortNewest,
		Order: OrderDesc,
		Page:  1,
		Limit: DefaultPageLimit,
	}
}

// NewAdminListQuery returns a query spanning all provider statuses.
func NewAdminListQuery() ProviderListQuery {
	q := NewPublicListQuery()
	q.allStatuses = true
	return q
}

// Privileged reports whether the query may see non-active providers.
func (q ProviderListQuery) Privileged() bool {
	return q.allStatuses
}

// Normalize clamps pagination into range and fills sort defaults. The default
// order follows the sort key: ascending for name, descending otherwise.
func (q ProviderListQuery) Normalize() ProviderListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Order == "" {
		if q.Sort == SortName {
			q.Order = OrderAsc
		} else {
			q.Order = OrderDesc
		}
	}
	return q
}

func (q ProviderListQuery) primaryColumn() string {
	switch q.Sort {
	case SortName:
		return "business_name"
	case SortRating:
		return "rating"
	case SortVerified:
		return "verified"
	default:
		return "created_at"
	}
}

// orderClause builds the deterministic ORDER BY chain: the primary key/order
// pair, then the fixed tie-breakers rating DESC, verified DESC, business_name
// ASC, created_at DESC (skipping whichever is the primary), and finally
// id DESC so two rows never compare equal.
func (q ProviderListQuery) orderClause() string {
	primary := q.primaryColumn()
	dir := "DESC"
	if q.Order == OrderAsc {
		dir = "ASC"
	}
	clauses := []string{fmt.Sprintf("%s %s", primary, dir)}
	tieBreakers := []struct {
		col string
		dir string
	}{
		{"rating", "DESC"},
		{"verified", "DESC"},
		{"business_name", "ASC"},
		{"created_at", "DESC"},
	}
	for _, tb := range tieBreakers {
		if tb.col == primary {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", tb.col, tb.dir))
	}
	clauses = append(clauses, "id DESC")
	return strings.Join(clauses, ", ")
}

// isFrontPage reports whether the query is the unfiltered first public page
// with defaults, the one worth keeping in the cache.
func (q ProviderListQuery) isFrontPage() bool {
	return !q.allStatuses &&
		len(q.Filters) == 0 &&
		q.Sort == SortNewest &&
		q.Order == OrderDesc &&
		q.Page == 1 &&
		q.Limit == DefaultPageLimit
}

func (q ProviderListQuery) scope(tx *gorm.DB) *gorm.DB {
	if !q.allStatuses {
		tx = tx.Where("status = ?", string(models.ProviderStatusActive))
	}
	for _, f := range q.Filters {
		tx = f.apply(tx)
	}
	return tx
}

// ProviderPage is one page of listing results plus the unpaginated total.
type ProviderPage struct {
	Providers []models.Provider
	Total     int64
	Page      int
	Limit     int
	Sort      ProviderSortKey
	Order     SortOrder
}

// TotalPages is ceil(Total/Limit), never below 1.
func (p ProviderPage) TotalPages() int {
	if p.Total <= 0 {
		return 1
	}
	pages := int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
	if pages < 1 {
		return 1
	}
	return pages
}
