package listing

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"
)

var testCats = Taxonomy{
	{ID: 1, Path: "life", Name: "Life"},
	{ID: 3, Path: "tech", Name: "Tech"},
}

var testTypes = Taxonomy{
	{ID: 1, Path: "original", Name: "Original"},
	{ID: 2, Path: "repost", Name: "Repost"},
}

func renderToString(t *testing.T, f Filter, res Result, rc Context) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(f, res, testSource(), rc).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func row(id int64, title string) RowSummary {
	return RowSummary{
		ID:        id,
		Title:     title,
		OwnerName: "ana",
		Category:  3,
		Type:      1,
		Public:    1,
		CreatedAt: time.Date(2026, 2, 10, 23, 30, 0, 0, time.UTC),
	}
}

func TestRenderEmptyShowsPlaceholder(t *testing.T) {
	out := renderToString(t, NewFilter(Published()), Result{}, Context{})
	if !strings.Contains(out, "Nothing here yet") {
		t.Errorf("empty result must render a placeholder, got %q", out)
	}
}

func TestRenderRowBasics(t *testing.T) {
	res := Result{Total: 1, Rows: []RowSummary{row(12, "Hello <World>")}}
	out := renderToString(t, NewFilter(Published()), res, Context{Loc: time.UTC})

	if !strings.Contains(out, `href="/article/view/12"`) {
		t.Errorf("missing title link: %q", out)
	}
	if !strings.Contains(out, "Hello &lt;World&gt;") {
		t.Errorf("title must be escaped: %q", out)
	}
	if !strings.Contains(out, "2026-02-10") {
		t.Errorf("missing formatted date: %q", out)
	}
	if !strings.Contains(out, "ana") {
		t.Errorf("missing owner name: %q", out)
	}
	if strings.Contains(out, "Edit") || strings.Contains(out, "Delete") {
		t.Errorf("management actions leaked into a non-admin view: %q", out)
	}
}

func TestRenderDateUsesSiteTimezone(t *testing.T) {
	// 23:30 UTC on Feb 10 is already Feb 11 east of UTC+1.
	loc := time.FixedZone("UTC+8", 8*3600)
	res := Result{Total: 1, Rows: []RowSummary{row(1, "t")}}
	out := renderToString(t, NewFilter(Published()), res, Context{Loc: loc})
	if !strings.Contains(out, "2026-02-11") {
		t.Errorf("date must be rendered in the site timezone: %q", out)
	}
}

func TestRenderFeaturedBadge(t *testing.T) {
	r := row(5, "starred")
	r.Featured = 1
	out := renderToString(t, NewFilter(Published()), Result{Total: 1, Rows: []RowSummary{r}}, Context{})
	if !strings.Contains(out, `badge`) || !strings.Contains(out, ">Featured<") {
		t.Errorf("featured rows must carry a badge: %q", out)
	}
}

func TestRenderCategoryLabels(t *testing.T) {
	res := Result{Total: 1, Rows: []RowSummary{row(2, "t")}}
	rc := Context{ShowCategoryLabels: true, Categories: testCats, Types: testTypes}
	out := renderToString(t, NewFilter(Published()), res, rc)
	if !strings.Contains(out, `href="/article/cat/tech"`) || !strings.Contains(out, ">Tech<") {
		t.Errorf("missing category label: %q", out)
	}
	if !strings.Contains(out, `href="/article/cat/tech/original"`) || !strings.Contains(out, ">Original<") {
		t.Errorf("missing type label: %q", out)
	}
}

func TestRenderUnresolvableCategoryOmitsLabel(t *testing.T) {
	r := row(2, "t")
	r.Category = 99 // removed from config
	res := Result{Total: 1, Rows: []RowSummary{r}}
	rc := Context{ShowCategoryLabels: true, Categories: testCats, Types: testTypes}
	out := renderToString(t, NewFilter(Published()), res, rc)
	if strings.Contains(out, "<mark") {
		t.Errorf("unresolvable category id must omit the label, got %q", out)
	}
}

func TestRenderAdminActions(t *testing.T) {
	r := row(7, "mine")
	r.Public = 0
	r.FeatureReq = 1
	res := Result{Total: 1, Rows: []RowSummary{r}}
	out := renderToString(t, NewFilter(OwnedBy(1)), res, Context{IsAdmin: true})

	if !strings.Contains(out, ">Draft<") {
		t.Errorf("admin view must show the draft status: %q", out)
	}
	if !strings.Contains(out, "Feature requested") {
		t.Errorf("admin view must show the feature-request state: %q", out)
	}
	if !strings.Contains(out, `href="/my/article/edit/7"`) {
		t.Errorf("missing edit link: %q", out)
	}
	if !strings.Contains(out, "confirm(") || !strings.Contains(out, "/my/article/rm/7") {
		t.Errorf("delete must go through a confirm step: %q", out)
	}
	if strings.Contains(out, ">Feature</a>") {
		t.Errorf("feature toggle is sudo-only: %q", out)
	}
}

func TestRenderSudoToggleIsExclusive(t *testing.T) {
	plain := row(3, "a")
	starred := row(4, "b")
	starred.Featured = 1
	rc := Context{IsAdmin: true, IsSudo: true}

	out := renderToString(t, NewFilter(All()), Result{Total: 1, Rows: []RowSummary{plain}}, rc)
	if !strings.Contains(out, `href="/my/article/good/3"`) {
		t.Errorf("unfeatured row must offer the feature action: %q", out)
	}
	if strings.Contains(out, "/my/article/good/cancel/3") {
		t.Errorf("unfeatured row must not offer unfeature: %q", out)
	}

	out = renderToString(t, NewFilter(All()), Result{Total: 1, Rows: []RowSummary{starred}}, rc)
	if !strings.Contains(out, `href="/my/article/good/cancel/4"`) {
		t.Errorf("featured row must offer the unfeature action: %q", out)
	}
	if strings.Contains(out, `href="/my/article/good/4"`) {
		t.Errorf("featured row must not offer feature: %q", out)
	}
}

func TestRenderSearchBarCarriesFilterContext(t *testing.T) {
	rc := Context{ShowSearchBar: true, CurrentCat: 3, CurrentType: 2}
	out := renderToString(t, NewFilter(Published()), Result{}, rc)
	if !strings.Contains(out, `action="/article/search"`) {
		t.Errorf("missing search form: %q", out)
	}
	if !strings.Contains(out, `/my/article/add?cat=3&amp;typ=2`) {
		t.Errorf("create shortcut must carry the current filter: %q", out)
	}
}

func TestRenderPagerOnlyWithBasePath(t *testing.T) {
	rows := make([]RowSummary, 20)
	for i := range rows {
		rows[i] = row(int64(40-i), "r")
	}
	res := Result{Total: 45, Rows: rows}

	out := renderToString(t, NewFilter(Published()).Page(2), res, Context{PagerBase: "/article"})
	if !strings.Contains(out, "pagination") {
		t.Errorf("expected a pager: %q", out)
	}

	out = renderToString(t, NewFilter(Published()).Page(2), res, Context{})
	if strings.Contains(out, "pagination") {
		t.Errorf("no pager base path means no pager: %q", out)
	}
}

func TestRenderFeaturedModeIsCompact(t *testing.T) {
	r := row(9, "pick")
	r.Featured = 1
	r.Thumb = sql.NullString{String: "cover.jpg", Valid: true}
	res := Result{Total: 1, Rows: []RowSummary{r}}
	rc := Context{Mode: ModeFeatured, IsAdmin: true, IsSudo: true}
	out := renderToString(t, NewFilter(Published()), res, rc)

	if !strings.Contains(out, "s-cover.jpg") {
		t.Errorf("featured mode should show the thumbnail: %q", out)
	}
	if !strings.Contains(out, `/my/article/edit/9`) || !strings.Contains(out, `/my/article/good/cancel/9`) {
		t.Errorf("featured mode admin actions are edit + unfeature: %q", out)
	}
	if strings.Contains(out, "/my/article/rm/9") {
		t.Errorf("featured mode must not offer delete: %q", out)
	}
}
