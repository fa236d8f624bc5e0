// Package listing implements the shared paginated listing component used by
// every content module: a parameterized query builder over one content table,
// a role-aware HTML renderer, and a pager. Handlers build a Filter from route
// and query parameters, run it against the store, and hand the result to
// Render.
package listing

import (
	"database/sql"
	"time"
)

// DefaultPageSize is the row count per page unless a caller overrides it.
// Embedded widgets typically use 5 or 10.
const DefaultPageSize = 20

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeOwnedBy
	scopePublished
)

// Scope selects which subset of a table a listing is restricted to.
type Scope struct {
	kind   scopeKind
	userID int64
}

// All places no restriction on the listing (moderation views).
func All() Scope { return Scope{kind: scopeAll} }

// OwnedBy restricts the listing to rows owned by the given user.
func OwnedBy(userID int64) Scope { return Scope{kind: scopeOwnedBy, userID: userID} }

// Published restricts the listing to publicly visible rows.
func Published() Scope { return Scope{kind: scopePublished} }

type searchKind int

const (
	searchFullText searchKind = iota
	searchTitleSubstring
)

// Search is a tagged search term: either indexed full-text search or a
// case-insensitive substring match on the title. A Filter holds at most one.
type Search struct {
	kind searchKind
	term string
}

// FullText searches the precomputed search vector column.
func FullText(term string) Search { return Search{kind: searchFullText, term: term} }

// TitleSubstring matches the lowercased title against a contained substring.
func TitleSubstring(term string) Search { return Search{kind: searchTitleSubstring, term: term} }

// Term returns the raw search input.
func (s Search) Term() string { return s.term }

// Filter is the immutable specification of one listing request. Each chained
// setter returns an updated copy; a Filter is built fresh per request and
// never persisted.
type Filter struct {
	scope    Scope
	category *uint8
	ctype    *uint8
	featured *uint8
	search   *Search
	page     int
	size     int
}

// NewFilter starts a filter with the given scope, page 1 and the default
// page size.
func NewFilter(scope Scope) Filter {
	return Filter{scope: scope, page: 1, size: DefaultPageSize}
}

// Category restricts rows to one category id.
func (f Filter) Category(id uint8) Filter {
	f.category = &id
	return f
}

// Type restricts rows to one content type id within the category.
func (f Filter) Type(id uint8) Filter {
	f.ctype = &id
	return f
}

// Featured restricts rows by the editorial featured flag (1 featured,
// 0 not featured).
func (f Filter) Featured(flag uint8) Filter {
	if flag > 1 {
		flag = 1
	}
	f.featured = &flag
	return f
}

// Search sets the search term. Full-text and substring search are mutually
// exclusive by construction: the last Search call wins and there is only one
// slot.
func (f Filter) Search(s Search) Filter {
	f.search = &s
	return f
}

// Page sets the 1-based page number. Page 0 or negative is a caller mistake
// and clamps to 1.
func (f Filter) Page(p int) Filter {
	if p < 1 {
		p = 1
	}
	f.page = p
	return f
}

// Size overrides the page size.
func (f Filter) Size(n int) Filter {
	if n < 1 {
		n = DefaultPageSize
	}
	f.size = n
	return f
}

// PageNum returns the effective 1-based page.
func (f Filter) PageNum() int { return f.page }

// PageSize returns the effective page size.
func (f Filter) PageSize() int { return f.size }

// RowSummary is the lightweight projection every content table can produce.
// Preview columns (thumb, excerpt, link) are selected through the Source
// expressions and may be NULL for types that lack them.
type RowSummary struct {
	ID         int64          `db:"id"`
	Title      string         `db:"title"`
	OwnerName  string         `db:"user_name"`
	Category   int16          `db:"i_category"`
	Type       int16          `db:"i_type"`
	Public     int16          `db:"i_public"`
	FeatureReq int16          `db:"i_good"`
	Featured   int16          `db:"good"`
	CreatedAt  time.Time      `db:"created_at"`
	Thumb      sql.NullString `db:"thumb"`
	Excerpt    sql.NullString `db:"excerpt"`
	Link       sql.NullString `db:"link_url"`
}

// Result is the outcome of one listing query. Total reflects the WHERE clause
// only; Rows holds at most one page, ordered by descending id.
type Result struct {
	Total int64
	Rows  []RowSummary
}

// Source adapts one content table to the shared listing component: the table
// and id column names, SQL expressions for the preview columns, and the URL
// builders the renderer needs. The same builder and renderer serve articles,
// notes and books through different Source values.
type Source struct {
	Table    string
	IDColumn string

	// SQL expressions selected as the preview columns, e.g. "file" or "NULL".
	ThumbExpr   string
	ExcerptExpr string
	LinkExpr    string

	// ThumbBase prefixes Thumb filenames when rendering (public image URL).
	ThumbBase string

	ViewURL    func(id int64) string
	EditURL    func(id int64) string
	DeleteURL  func(id int64) string
	FeatureURL func(id int64, on bool) string

	// CatBase returns the base path for category label links; management
	// views link into the owner-scoped category pages.
	CatBase func(admin bool) string

	SearchPath string
	CreatePath string
}

func orNull(expr string) string {
	if expr == "" {
		return "NULL"
	}
	return expr
}
