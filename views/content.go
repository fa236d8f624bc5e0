package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/curio/listing"
)

// CommentView is one rendered comment on a detail page.
type CommentView struct {
	Author   string
	HTML     string
	Date     string
	DeleteTo string // empty hides the delete control
}

// ContentPage carries everything the detail page shows.
type ContentPage struct {
	Title     string
	HTML      string // sanitized body markup
	OwnerName string
	Date      string
	Click     int64
	Tags      []string
	Category  string
	Author    string
	Press     string
	URL       string
	File      string
	Draft     bool
	CanEdit   bool
	EditURL   string
	Comments  []CommentView
	CSRF      string
	CommentTo string // POST target for the comment form, empty hides it
}

// ContentDetail renders the full view page for an article, note or book.
func ContentDetail(p ContentPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<article class=\"col-lg-9 mx-auto\">")
		fmt.Fprintf(&buf, "<h1>%s</h1>", esc(p.Title))
		if p.Draft {
			buf.WriteString("<span class=\"badge text-bg-secondary\">Draft</span> ")
		}
		fmt.Fprintf(&buf, "<p class=\"text-muted\"><small>%s by %s", esc(p.Date), esc(p.OwnerName))
		if p.Category != "" {
			fmt.Fprintf(&buf, " in %s", esc(p.Category))
		}
		fmt.Fprintf(&buf, " &middot; %d views</small>", p.Click)
		if p.CanEdit {
			fmt.Fprintf(&buf, " <a href=\"%s\">Edit</a>", p.EditURL)
		}
		buf.WriteString("</p>")
		if p.Author != "" {
			fmt.Fprintf(&buf, "<p><strong>%s</strong>", esc(p.Author))
			if p.Press != "" {
				fmt.Fprintf(&buf, ", %s", esc(p.Press))
			}
			buf.WriteString("</p>")
		}
		buf.WriteString("<div class=\"content-body\">")
		buf.WriteString(p.HTML)
		buf.WriteString("</div>")
		if p.URL != "" {
			fmt.Fprintf(&buf, "<p><a href=\"%s\" target=\"_blank\" rel=\"noopener\">Read online</a></p>", esc(p.URL))
		}
		if p.File != "" {
			fmt.Fprintf(&buf, "<p><a href=\"%s\">Download</a></p>", esc(p.File))
		}
		if len(p.Tags) > 0 {
			buf.WriteString("<p>")
			for _, t := range p.Tags {
				fmt.Fprintf(&buf, "<span class=\"badge text-bg-light me-1\">%s</span>", esc(strings.TrimSpace(t)))
			}
			buf.WriteString("</p>")
		}
		writeComments(&buf, p)
		buf.WriteString("</article>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeComments(buf *bytes.Buffer, p ContentPage) {
	buf.WriteString("<hr><section class=\"comments\">")
	fmt.Fprintf(buf, "<h5>Comments (%d)</h5>", len(p.Comments))
	for _, cm := range p.Comments {
		buf.WriteString("<div class=\"border-bottom py-2\">")
		fmt.Fprintf(buf, "<p class=\"mb-1\"><strong>%s</strong> <small class=\"text-muted\">%s</small>", esc(cm.Author), esc(cm.Date))
		if cm.DeleteTo != "" {
			fmt.Fprintf(buf, " <a href=\"javascript:if(confirm('Delete this comment?'))location='%s'\"><small>Delete</small></a>", esc(cm.DeleteTo))
		}
		buf.WriteString("</p>")
		buf.WriteString(cm.HTML)
		buf.WriteString("</div>")
	}
	if p.CommentTo != "" {
		fmt.Fprintf(buf, "<form method=\"post\" action=\"%s\" class=\"mt-3\">", p.CommentTo)
		fmt.Fprintf(buf, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">", esc(p.CSRF))
		buf.WriteString("<textarea class=\"form-control\" name=\"body\" rows=\"3\" required></textarea>")
		buf.WriteString("<button type=\"submit\" class=\"btn btn-primary btn-sm mt-2\">Post comment</button>")
		buf.WriteString("</form>")
	}
	buf.WriteString("</section>")
}

// ContentFormData carries the create/edit form state, including previous
// input when validation failed.
type ContentFormData struct {
	Heading    string
	Action     string
	CSRF       string
	Errors     []string
	Title      string
	Body       string
	Brief      string
	Tags       string
	URL        string
	Public     int16
	FeatureReq int16
	Category   uint8
	Type       uint8
	Categories listing.Taxonomy
	Types      listing.Taxonomy
	IsBook     bool
	HasLink    bool
	Author     string
	Press      string
	File       string
}

// ContentForm renders the create/edit form for any content kind.
func ContentForm(d ContentFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<div class=\"col-lg-9 mx-auto\">")
		fmt.Fprintf(&buf, "<h3>%s</h3>", esc(d.Heading))
		if err := ErrorList(d.Errors).Render(ctx, &buf); err != nil {
			return err
		}
		fmt.Fprintf(&buf, "<form method=\"post\" action=\"%s\">", d.Action)
		fmt.Fprintf(&buf, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">", esc(d.CSRF))
		comps := []templ.Component{
			NewTextInput("title", "title", true).Placeholder("Title").Value(d.Title).Show(),
			NewTextArea("body", "body", true).Rows(12).Text(d.Body).Markdown().Show(),
			NewTextArea("brief", "brief", false).Rows(3).Text(d.Brief).Show(),
			NewTextInput("tags", "tags", false).Placeholder("Tags, comma separated").Value(d.Tags).Show(),
		}
		if d.IsBook {
			comps = append(comps,
				NewTextInput("author", "author", false).Placeholder("Author").Value(d.Author).Show(),
				NewTextInput("press", "press", false).Placeholder("Publisher").Value(d.Press).Show(),
				NewTextInput("url", "url", false).Placeholder("Read-online URL").Value(d.URL).Show(),
				NewTextInput("file", "file", false).Placeholder("Download file path").Value(d.File).Show(),
			)
		} else if d.HasLink {
			comps = append(comps,
				NewTextInput("url", "url", false).Placeholder("Link URL").Value(d.URL).Show(),
			)
		}
		for _, cmp := range comps {
			if err := cmp.Render(ctx, &buf); err != nil {
				return err
			}
		}
		writeSelect(&buf, "i_category", "Category", d.Categories, d.Category)
		writeSelect(&buf, "i_type", "Type", d.Types, d.Type)
		radios := []templ.Component{
			Radio("pub0", "i_public", "0", d.Public == 0, "Draft"),
			Radio("pub1", "i_public", "1", d.Public == 1, "Publish"),
			Checkbox("good", "i_good", "1", d.FeatureReq == 1),
		}
		for _, cmp := range radios {
			if err := cmp.Render(ctx, &buf); err != nil {
				return err
			}
		}
		buf.WriteString("<label for=\"good\" class=\"ms-1\">Request featuring</label><br>")
		if err := Submit("Save").Render(ctx, &buf); err != nil {
			return err
		}
		buf.WriteString("</form></div>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeSelect(buf *bytes.Buffer, name, label string, tax listing.Taxonomy, selected uint8) {
	if len(tax) == 0 {
		return
	}
	fmt.Fprintf(buf, "<label for=%q class=\"form-label\">%s</label>", name, esc(label))
	fmt.Fprintf(buf, "<select class=\"form-select mb-3\" id=%q name=%q>", name, name)
	for _, entry := range tax {
		sel := ""
		if entry.ID == selected {
			sel = " selected"
		}
		fmt.Fprintf(buf, "<option value=\"%d\"%s>%s</option>", entry.ID, sel, esc(entry.Name))
	}
	buf.WriteString("</select>")
}

// ShowDate formats a timestamp the way list rows do.
func ShowDate(t time.Time, loc *time.Location) string {
	return listing.ShowDate(t, loc)
}
