// Package views renders the site's HTML. Components are built by hand on
// templ.ComponentFunc so pages stay plain Go with no template pipeline.
package views

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// PageMeta carries everything the outer shell needs.
type PageMeta struct {
	Title       string
	SiteName    string
	Description string
	UserName    string // empty when anonymous
	Sudo        bool
	Unread      int64 // unread message count for the nav badge
	CSRF        string
}

// Page wraps a body component in the site shell: head, nav bar, footer.
func Page(meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		title := meta.Title
		if meta.SiteName != "" {
			if title == "" {
				title = meta.SiteName
			} else {
				title += " - " + meta.SiteName
			}
		}
		fmt.Fprintf(&buf, "<title>%s</title>", esc(title))
		if meta.Description != "" {
			fmt.Fprintf(&buf, "<meta name=\"description\" content=\"%s\">", esc(meta.Description))
		}
		buf.WriteString("<link rel=\"stylesheet\" href=\"/static/css/bootstrap.min.css\">")
		buf.WriteString("<link rel=\"stylesheet\" href=\"/static/css/site.css\">")
		buf.WriteString("</head><body>")
		writeNav(&buf, meta)
		buf.WriteString("<main class=\"container py-3\">")
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		var tail bytes.Buffer
		tail.WriteString("</main><footer class=\"container py-4 text-muted\"><small>")
		tail.WriteString(esc(meta.SiteName))
		tail.WriteString("</small></footer></body></html>")
		_, err := w.Write(tail.Bytes())
		return err
	})
}

func writeNav(buf *bytes.Buffer, meta PageMeta) {
	buf.WriteString("<nav class=\"navbar navbar-expand bg-body-tertiary\"><div class=\"container\">")
	fmt.Fprintf(buf, "<a class=\"navbar-brand\" href=\"/\">%s</a>", esc(meta.SiteName))
	buf.WriteString("<ul class=\"navbar-nav me-auto\">")
	navItem(buf, "/article", "Articles")
	navItem(buf, "/note", "Notes")
	navItem(buf, "/book", "Books")
	navItem(buf, "/gallery", "Gallery")
	buf.WriteString("</ul><ul class=\"navbar-nav\">")
	if meta.UserName == "" {
		navItem(buf, "/user/login", "Sign in")
		navItem(buf, "/user/register", "Join")
	} else {
		label := "Messages"
		if meta.Unread > 0 {
			label = fmt.Sprintf("Messages <span class=\"badge text-bg-danger\">%d</span>", meta.Unread)
		}
		fmt.Fprintf(buf, "<li class=\"nav-item\"><a class=\"nav-link\" href=\"/my/message\">%s</a></li>", label)
		name := esc(meta.UserName)
		if meta.Sudo {
			name += " <span class=\"badge text-bg-info\">mod</span>"
		}
		navItem(buf, "/my/article", name)
		navItem(buf, "/user/logout", "Sign out")
	}
	buf.WriteString("</ul></div></nav>")
}

func navItem(buf *bytes.Buffer, href, label string) {
	fmt.Fprintf(buf, "<li class=\"nav-item\"><a class=\"nav-link\" href=\"%s\">%s</a></li>", href, label)
}

// NotFound is the 404 page body.
func NotFound() templ.Component {
	return statusPage("Not found", "The page you asked for does not exist.")
}

// ServerError is the 500 page body.
func ServerError() templ.Component {
	return statusPage("Something went wrong", "An internal error occurred. Please try again later.")
}

// Forbidden is the 403 page body.
func Forbidden() templ.Component {
	return statusPage("Not allowed", "You do not have permission to do that.")
}

func statusPage(heading, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "<div class=\"text-center py-5\"><h2>%s</h2><p class=\"text-muted\">%s</p>", esc(heading), esc(text))
		buf.WriteString("<p><a href=\"/\">Back to the front page</a></p></div>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Raw emits pre-rendered HTML unchanged. Callers must pass sanitized markup.
func Raw(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

// Tip wraps a short notice in the bordered card used above forms.
func Tip(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<div class=\"row justify-content-center\"><div class=\"col col-md-7 col-xl-5 border p-2 shadow mb-3 bg-body rounded\">")
		buf.WriteString(esc(text))
		buf.WriteString("</div></div>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}
