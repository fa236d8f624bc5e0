package listing

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PageLink is one entry of a computed pager: a numbered page, or the
// previous/next arrows. The current page is marked active and carries no URL.
type PageLink struct {
	Label  string
	URL    string
	Active bool
}

// PageCount returns ceil(total/size).
func PageCount(total int64, size int) int {
	if size < 1 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// PageLinks computes the pager entries for a listing. When everything fits on
// one page the pager is suppressed entirely and nil is returned. Links carry
// only the page parameter; callers that need to keep an active filter across
// pages embed it in the base path.
func PageLinks(base string, total int64, size, current int) []PageLink {
	if total <= int64(size) {
		return nil
	}
	pages := PageCount(total, size)
	if current < 1 {
		current = 1
	}

	var links []PageLink
	if current != 1 {
		links = append(links, PageLink{Label: "«", URL: pageURL(base, current-1)})
	}
	for p := 1; p <= pages; p++ {
		if p == current {
			links = append(links, PageLink{Label: fmt.Sprintf("%d", p), Active: true})
		} else {
			links = append(links, PageLink{Label: fmt.Sprintf("%d", p), URL: pageURL(base, p)})
		}
	}
	if current < pages {
		links = append(links, PageLink{Label: "»", URL: pageURL(base, current+1)})
	}
	return links
}

func pageURL(base string, page int) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}

// Pager renders the page navigation control. It emits nothing at all when the
// result fits on a single page.
func Pager(base string, total int64, size, current int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		links := PageLinks(base, total, size, current)
		if len(links) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<nav class="d-flex justify-content-center"><ul class="pagination">`); err != nil {
			return err
		}
		for _, l := range links {
			var item string
			if l.Active {
				item = fmt.Sprintf(`<li class="page-item active" aria-current="page"><span class="page-link">%s</span></li>`, html.EscapeString(l.Label))
			} else {
				item = fmt.Sprintf(`<li class="page-item"><a class="page-link" href="%s">%s</a></li>`, html.EscapeString(l.URL), html.EscapeString(l.Label))
			}
			if _, err := io.WriteString(w, item); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></nav>`)
		return err
	})
}
