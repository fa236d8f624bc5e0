package listing

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/a-h/templ"
)

// Mode selects the row layout.
type Mode int

const (
	// ModeNormal is the full list with all fields and actions.
	ModeNormal Mode = iota
	// ModeFeatured is the compact sidebar list of featured rows: title,
	// thumbnail if present, and management trimmed to edit and un-feature.
	ModeFeatured
)

// Context carries the role and presentation flags for one rendering.
// It comes from session state, not from the Filter.
type Context struct {
	// IsAdmin gates management controls: status labels, edit and delete.
	// True for the owner's management views and for moderators.
	IsAdmin bool
	// IsSudo additionally gates the featured-flag toggle (moderators only).
	IsSudo bool

	ShowSearchBar      bool
	ShowCategoryLabels bool

	// Tip is an optional banner rendered above the list.
	Tip templ.Component

	// PagerBase is the path page links hang off. Empty suppresses the pager
	// entirely (embedded top-N widgets).
	PagerBase string

	Mode Mode

	// Categories and Types resolve label links. Unresolvable ids simply omit
	// the label.
	Categories Taxonomy
	Types      Taxonomy

	// CurrentCat and CurrentType pre-fill the create shortcut next to the
	// search bar so creating from a filtered view keeps the filter context.
	CurrentCat  uint8
	CurrentType uint8

	// Loc is the site timezone for date display; nil means time.Local.
	Loc *time.Location
}

func (rc Context) location() *time.Location {
	if rc.Loc == nil {
		return time.Local
	}
	return rc.Loc
}

// ShowDate formats a timestamp as YYYY-MM-DD in the site's timezone.
func ShowDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// Render builds the markup for one listing: tip, search bar, rows and pager,
// all gated by the Context. The same component serves every content type via
// its Source.
func Render(f Filter, res Result, src Source, rc Context) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if rc.Tip != nil {
			if err := rc.Tip.Render(ctx, &buf); err != nil {
				return err
			}
		}
		switch rc.Mode {
		case ModeFeatured:
			renderFeatured(&buf, res, src, rc)
		default:
			renderNormal(&buf, f, res, src, rc)
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func renderNormal(buf *bytes.Buffer, f Filter, res Result, src Source, rc Context) {
	if rc.ShowSearchBar {
		searchBar(buf, src, rc)
	}
	buf.WriteString(`<div class="container">`)
	if len(res.Rows) == 0 {
		noData(buf)
	}
	for _, row := range res.Rows {
		buf.WriteString(`<div class="row border m-2 p-2 shadow mb-3 bg-body rounded">`)

		if row.Thumb.Valid && row.Thumb.String != "" {
			fmt.Fprintf(buf, `<div class="col col-md-3 text-center"><a href="%s"><img class="shadow p-2 bg-body rounded w-75" src="%s/s-%s" alt="%s"></a></div>`,
				attr(src.ViewURL(row.ID)), attr(src.ThumbBase), attr(row.Thumb.String), attr(row.Title))
			buf.WriteString(`<div class="col col-md-9 p-1">`)
		} else {
			buf.WriteString(`<div class="col p-1">`)
		}

		fmt.Fprintf(buf, `<div class="row"><div class="col"><a class="fs-5 fw-bold" href="%s">%s</a>%s</div></div>`,
			attr(src.ViewURL(row.ID)), esc(row.Title), featuredBadge(row.Featured))

		buf.WriteString(`<div class="row p-2"><div class="col">`)
		fmt.Fprintf(buf, `<span class="mx-2">%s</span><span>%s</span>`,
			ShowDate(row.CreatedAt, rc.location()), esc(row.OwnerName))
		if rc.ShowCategoryLabels {
			catLabels(buf, row, src, rc)
		}
		if rc.IsAdmin || rc.IsSudo {
			adminActions(buf, row, src, rc)
		}
		buf.WriteString(`</div></div>`)

		if row.Excerpt.Valid && row.Excerpt.String != "" {
			// Excerpts are sanitized HTML produced by the text-transform
			// collaborator before storage; they render as-is.
			fmt.Fprintf(buf, `<div class="border m-2 p-2">%s</div>`, row.Excerpt.String)
		}
		if row.Link.Valid && row.Link.String != "" {
			fmt.Fprintf(buf, `<div class="m-2 p-2 text-end"><a class="fs-6" href="%s" target="_blank" rel="noopener">Read</a></div>`,
				attr(row.Link.String))
		}
		buf.WriteString(`</div></div>`)
	}
	if rc.PagerBase != "" {
		pagerInto(buf, rc.PagerBase, res.Total, f.PageSize(), f.PageNum())
	}
	buf.WriteString(`</div>`)
}

func renderFeatured(buf *bytes.Buffer, res Result, src Source, rc Context) {
	buf.WriteString(`<div><h5 class="text-center mb-2 p-2 border-bottom border-secondary border-2">Featured</h5>`)
	if len(res.Rows) == 0 {
		noData(buf)
	}
	for _, row := range res.Rows {
		buf.WriteString(`<div class="border m-2 p-2 text-center">`)
		if row.Thumb.Valid && row.Thumb.String != "" {
			fmt.Fprintf(buf, `<div><a href="%s"><img class="shadow p-2 mb-2 bg-body rounded" src="%s/s-%s" alt="%s"></a></div>`,
				attr(src.ViewURL(row.ID)), attr(src.ThumbBase), attr(row.Thumb.String), attr(row.Title))
		}
		fmt.Fprintf(buf, `<div><a class="fw-bold" href="%s">%s</a></div>`, attr(src.ViewURL(row.ID)), esc(row.Title))
		if rc.IsAdmin || rc.IsSudo {
			buf.WriteString(`<div>`)
			fmt.Fprintf(buf, `<a class="mx-2" href="%s">Edit</a>`, attr(src.EditURL(row.ID)))
			if rc.IsSudo {
				fmt.Fprintf(buf, `<a class="mx-2" href="%s">Unfeature</a>`, attr(src.FeatureURL(row.ID, false)))
			}
			buf.WriteString(`</div>`)
		}
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</div>`)
}

func catLabels(buf *bytes.Buffer, row RowSummary, src Source, rc Context) {
	if row.Category < 0 || row.Category > 255 {
		return
	}
	catPath, catName, ok := rc.Categories.PathName(uint8(row.Category))
	if !ok {
		// Stale or removed category: the label is simply omitted.
		return
	}
	base := src.CatBase(rc.IsAdmin)
	fmt.Fprintf(buf, `<mark class="mx-2"><a href="%s%s">%s</a></mark>`, attr(base), attr(catPath), esc(catName))
	if row.Type < 0 || row.Type > 255 {
		return
	}
	if typePath, typeName, ok := rc.Types.PathName(uint8(row.Type)); ok {
		fmt.Fprintf(buf, `<mark class="me-2"><a href="%s%s/%s">%s</a></mark>`,
			attr(base), attr(catPath), attr(typePath), esc(typeName))
	}
}

func adminActions(buf *bytes.Buffer, row RowSummary, src Source, rc Context) {
	buf.WriteString(`<span class="float-end">`)
	buf.WriteString(statusLabel(row.Public))
	fmt.Fprintf(buf, `<span class="mx-2">%s</span><br>`, esc(featureState(row.FeatureReq, row.Featured)))
	fmt.Fprintf(buf, `<a class="mx-3" href="%s">Edit</a>`, attr(src.EditURL(row.ID)))
	// Deletion always goes through an explicit confirm step.
	fmt.Fprintf(buf, `<a class="mx-3" href="javascript:if(confirm('Delete this entry?'))location='%s'">Delete</a>`,
		attr(src.DeleteURL(row.ID)))
	if rc.IsSudo {
		if row.Featured == 1 {
			fmt.Fprintf(buf, `<a class="ms-2" href="%s">Unfeature</a>`, attr(src.FeatureURL(row.ID, false)))
		} else {
			fmt.Fprintf(buf, `<a class="ms-2" href="%s">Feature</a>`, attr(src.FeatureURL(row.ID, true)))
		}
	}
	buf.WriteString(`</span>`)
}

func searchBar(buf *bytes.Buffer, src Source, rc Context) {
	fmt.Fprintf(buf, `<form action="%s" method="get"><div class="container mb-3"><div class="row"><div class="col text-end">`, attr(src.SearchPath))
	buf.WriteString(`<input name="key" required class="w-sm-75">`)
	buf.WriteString(`<button class="btn btn-primary m-1">Search</button>`)
	fmt.Fprintf(buf, `<a class="btn btn-outline-primary shadow m-1" href="%s?cat=%d&amp;typ=%d">New</a>`,
		attr(src.CreatePath), rc.CurrentCat, rc.CurrentType)
	buf.WriteString(`</div></div></div></form>`)
}

func noData(buf *bytes.Buffer) {
	buf.WriteString(`<div class="text-center text-muted m-4 p-4">Nothing here yet.</div>`)
}

func pagerInto(buf *bytes.Buffer, base string, total int64, size, current int) {
	// Pager rendering never fails on a bytes.Buffer.
	_ = Pager(base, total, size, current).Render(context.Background(), buf)
}

// statusLabel renders the draft/published state for management views.
func statusLabel(public int16) string {
	if public == 1 {
		return `<span class="text-success">Published</span>`
	}
	return `<span class="text-danger">Draft</span>`
}

// featureState describes the editorial state of a row: the owner may request
// featuring (i_good), a moderator grants it (good).
func featureState(featureReq, featured int16) string {
	if featured == 1 {
		return "Featured"
	}
	if featureReq == 1 {
		return "Feature requested"
	}
	return "Not featured"
}

// featuredBadge renders the badge shown next to featured titles.
func featuredBadge(featured int16) string {
	if featured == 1 {
		return `<span class="badge bg-secondary ms-2">Featured</span>`
	}
	return ""
}

func esc(s string) string { return html.EscapeString(s) }

func attr(s string) string { return html.EscapeString(s) }
