package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// MessageRow is one line of the inbox or outbox.
type MessageRow struct {
	ID     string
	Title  string
	Peer   string // sender in the inbox, recipient in the outbox
	Date   string
	Unread bool
}

// MessageList renders the inbox or outbox with its pager.
func MessageList(heading string, rows []MessageRow, pager templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-lg-9 mx-auto">`)
		fmt.Fprintf(&buf, `<div class="d-flex justify-content-between"><h3>%s</h3>`, esc(heading))
		buf.WriteString(`<div><a class="mx-2" href="/my/message">Inbox</a><a class="mx-2" href="/my/message/out">Sent</a>`)
		buf.WriteString(`<a class="btn btn-primary btn-sm ms-2" href="/my/message/add">Compose</a></div></div>`)
		if len(rows) == 0 {
			buf.WriteString(`<div class="text-center text-muted m-4 p-4">Nothing here yet.</div>`)
		}
		for _, r := range rows {
			buf.WriteString(`<div class="border-bottom py-2 d-flex justify-content-between">`)
			title := esc(r.Title)
			if r.Unread {
				title = "<strong>" + title + "</strong>"
			}
			fmt.Fprintf(&buf, `<span><a href="/my/message/view/%s">%s</a> <small class="text-muted">%s</small></span>`,
				r.ID, title, esc(r.Peer))
			fmt.Fprintf(&buf, `<span><small class="text-muted">%s</small>`, esc(r.Date))
			fmt.Fprintf(&buf, ` <a class="ms-2" href="javascript:if(confirm('Delete this message?'))location='/my/message/rm/%s'">Delete</a></span>`, r.ID)
			buf.WriteString(`</div>`)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if pager != nil {
			if err := pager.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// MessageDetail renders one message.
func MessageDetail(title, from, to, date, html, replyTo string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-lg-9 mx-auto">`)
		fmt.Fprintf(&buf, `<h3>%s</h3>`, esc(title))
		fmt.Fprintf(&buf, `<p class="text-muted"><small>%s, from %s to %s</small></p>`, esc(date), esc(from), esc(to))
		buf.WriteString(`<div class="border p-3">`)
		buf.WriteString(html)
		buf.WriteString(`</div>`)
		if replyTo != "" {
			fmt.Fprintf(&buf, `<p class="mt-3"><a class="btn btn-outline-primary btn-sm" href="/my/message/add?to=%s">Reply</a></p>`, esc(replyTo))
		}
		buf.WriteString(`</div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// MessageFormData carries the compose form state.
type MessageFormData struct {
	CSRF   string
	Errors []string
	To     string
	Title  string
	Body   string
}

// MessageForm renders the compose form.
func MessageForm(d MessageFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-lg-9 mx-auto"><h3>New message</h3>`)
		if err := ErrorList(d.Errors).Render(ctx, &buf); err != nil {
			return err
		}
		buf.WriteString(`<form method="post" action="/my/message/add">`)
		fmt.Fprintf(&buf, `<input type="hidden" name="_csrf" value="%s">`, esc(d.CSRF))
		comps := []templ.Component{
			NewTextInput("to", "to", true).Placeholder("Recipient").Value(d.To).Show(),
			NewTextInput("title", "title", true).Placeholder("Subject").Value(d.Title).Show(),
			NewTextArea("body", "body", true).Rows(8).Text(d.Body).Markdown().Show(),
			Submit("Send"),
		}
		for _, cmp := range comps {
			if err := cmp.Render(ctx, &buf); err != nil {
				return err
			}
		}
		buf.WriteString(`</form></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}
