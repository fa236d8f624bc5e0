package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// GalleryItem is one picture card on the gallery grid.
type GalleryItem struct {
	Title    string
	Brief    string
	ThumbURL string
	FullURL  string
	EditTo   string // empty hides the edit control
	DeleteTo string // empty hides the delete control
}

// GalleryGrid renders the picture grid with its pager.
func GalleryGrid(heading string, items []GalleryItem, pager templ.Component, uploadTo string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, `<div class="d-flex justify-content-between"><h3>%s</h3>`, esc(heading))
		if uploadTo != "" {
			fmt.Fprintf(&buf, `<a class="btn btn-primary btn-sm" href="%s">Upload</a>`, uploadTo)
		}
		buf.WriteString(`</div><div class="row">`)
		if len(items) == 0 {
			buf.WriteString(`<div class="text-center text-muted m-4 p-4">Nothing here yet.</div>`)
		}
		for _, it := range items {
			buf.WriteString(`<div class="col-6 col-md-3 mb-3"><div class="card h-100">`)
			fmt.Fprintf(&buf, `<a href="%s"><img class="card-img-top" src="%s" alt="%s"></a>`,
				esc(it.FullURL), esc(it.ThumbURL), esc(it.Title))
			buf.WriteString(`<div class="card-body p-2">`)
			fmt.Fprintf(&buf, `<p class="card-text mb-1"><small>%s</small></p>`, esc(it.Title))
			if it.Brief != "" {
				fmt.Fprintf(&buf, `<p class="card-text text-muted mb-1"><small>%s</small></p>`, esc(it.Brief))
			}
			if it.EditTo != "" {
				fmt.Fprintf(&buf, `<a class="me-2" href="%s"><small>Edit</small></a>`, esc(it.EditTo))
			}
			if it.DeleteTo != "" {
				fmt.Fprintf(&buf, `<a href="javascript:if(confirm('Delete this picture?'))location='%s'"><small>Delete</small></a>`, esc(it.DeleteTo))
			}
			buf.WriteString(`</div></div></div>`)
		}
		buf.WriteString(`</div>`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if pager != nil {
			if err := pager.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// GalleryUploadForm renders the picture upload form.
func GalleryUploadForm(csrf string, errs []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-md-6 mx-auto"><h3>Upload picture</h3>`)
		if err := ErrorList(errs).Render(ctx, &buf); err != nil {
			return err
		}
		buf.WriteString(`<form method="post" action="/my/gallery/add" enctype="multipart/form-data">`)
		fmt.Fprintf(&buf, `<input type="hidden" name="_csrf" value="%s">`, esc(csrf))
		buf.WriteString(`<input class="form-control mb-3" type="file" name="image" accept="image/*" required>`)
		comps := []templ.Component{
			NewTextInput("title", "title", true).Placeholder("Title").Show(),
			NewTextInput("brief", "brief", false).Placeholder("Short description").Show(),
			NewTextInput("tags", "tags", false).Placeholder("Tags, comma separated").Show(),
			Submit("Upload"),
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

// GalleryEditForm renders the metadata form for an existing picture.
func GalleryEditForm(action, csrf string, errs []string, title, brief, tags string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-md-6 mx-auto"><h3>Edit picture</h3>`)
		if err := ErrorList(errs).Render(ctx, &buf); err != nil {
			return err
		}
		fmt.Fprintf(&buf, `<form method="post" action="%s">`, esc(action))
		fmt.Fprintf(&buf, `<input type="hidden" name="_csrf" value="%s">`, esc(csrf))
		comps := []templ.Component{
			NewTextInput("title", "title", true).Placeholder("Title").Value(title).Show(),
			NewTextInput("brief", "brief", false).Placeholder("Short description").Value(brief).Show(),
			NewTextInput("tags", "tags", false).Placeholder("Tags, comma separated").Value(tags).Show(),
			Submit("Save"),
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
