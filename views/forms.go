package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// TextInput is a chainable builder for a single form input.
type TextInput struct {
	id          string
	name        string
	value       string
	inputType   string
	required    bool
	placeholder string
}

// NewTextInput starts a text input with the usual form-control styling.
func NewTextInput(id, name string, required bool) TextInput {
	return TextInput{id: id, name: name, required: required, inputType: "text"}
}

func (t TextInput) Type(typ string) TextInput {
	t.inputType = typ
	return t
}

func (t TextInput) Placeholder(ph string) TextInput {
	t.placeholder = ph
	return t
}

func (t TextInput) Value(v string) TextInput {
	t.value = v
	return t
}

func (t TextInput) Show() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "<input class=\"form-control mb-3\" id=%q type=%q name=%q", t.id, t.inputType, t.name)
		if t.placeholder != "" {
			fmt.Fprintf(&buf, " placeholder=\"%s\"", esc(t.placeholder))
		}
		if t.value != "" {
			fmt.Fprintf(&buf, " value=\"%s\"", esc(t.value))
		}
		if t.required {
			buf.WriteString(" required")
		}
		buf.WriteString(">")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// TextArea is a chainable builder for a textarea, optionally with the
// markdown hint under it.
type TextArea struct {
	id       string
	name     string
	text     string
	required bool
	rows     int
	md       bool
}

func NewTextArea(id, name string, required bool) TextArea {
	return TextArea{id: id, name: name, required: required, rows: 5}
}

func (t TextArea) Text(s string) TextArea {
	t.text = s
	return t
}

func (t TextArea) Rows(n int) TextArea {
	t.rows = n
	return t
}

func (t TextArea) Markdown() TextArea {
	t.md = true
	return t
}

func (t TextArea) Show() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "<textarea class=\"form-control\" id=%q name=%q rows=\"%d\"", t.id, t.name, t.rows)
		if t.required {
			buf.WriteString(" required")
		}
		fmt.Fprintf(&buf, ">%s</textarea>", esc(t.text))
		if t.md {
			buf.WriteString("<div class=\"text-end mb-2\"><small class=\"text-muted\"><em>Markdown supported</em></small></div>")
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Radio renders a labelled radio button.
func Radio(id, name, value string, checked bool, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<span class=\"p-3 d-inline-block\">")
		fmt.Fprintf(&buf, "<input id=%q type=\"radio\" name=%q class=\"me-1\" value=\"%s\"", id, name, esc(value))
		if checked {
			buf.WriteString(" checked")
		}
		fmt.Fprintf(&buf, "><label for=%q>%s</label></span>", id, esc(label))
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Checkbox renders a bare checkbox.
func Checkbox(id, name, value string, checked bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "<input id=%q type=\"checkbox\" name=%q value=\"%s\"", id, name, esc(value))
		if checked {
			buf.WriteString(" checked")
		}
		buf.WriteString(">")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Submit renders the form's submit button.
func Submit(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<button type=\"submit\" class=\"btn btn-primary m-3\">%s</button>", esc(text))
		return err
	})
}

// CSRFField renders the hidden token input every POST form carries.
func CSRFField(token string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">", esc(token))
		return err
	})
}

// ErrorList shows validation problems above a form. Nothing is emitted
// when the list is empty.
func ErrorList(errs []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(errs) == 0 {
			return nil
		}
		var buf bytes.Buffer
		buf.WriteString("<div class=\"text-danger\"><p>Please fix the problems below.</p><ul>")
		for _, e := range errs {
			fmt.Fprintf(&buf, "<li>%s</li>", esc(e))
		}
		buf.WriteString("</ul></div>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}
