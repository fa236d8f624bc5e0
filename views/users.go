package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// AuthFormData carries the state shared by the account forms.
type AuthFormData struct {
	CSRF   string
	Errors []string
	Name   string
	Email  string
}

func authForm(heading, action string, d AuthFormData, fields ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-md-6 col-xl-4 mx-auto">`)
		fmt.Fprintf(&buf, `<h3>%s</h3>`, esc(heading))
		if err := ErrorList(d.Errors).Render(ctx, &buf); err != nil {
			return err
		}
		fmt.Fprintf(&buf, `<form method="post" action="%s">`, action)
		fmt.Fprintf(&buf, `<input type="hidden" name="_csrf" value="%s">`, esc(d.CSRF))
		for _, f := range fields {
			if err := f.Render(ctx, &buf); err != nil {
				return err
			}
		}
		buf.WriteString(`</form></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// LoginForm renders the sign-in page.
func LoginForm(d AuthFormData) templ.Component {
	return authForm("Sign in", "/user/login", d,
		NewTextInput("name", "name", true).Placeholder("User name").Value(d.Name).Show(),
		NewTextInput("password", "password", true).Type("password").Placeholder("Password").Show(),
		Submit("Sign in"),
		Raw(`<p><a href="/user/reset">Forgot your password?</a></p>`),
	)
}

// RegisterForm renders the sign-up page.
func RegisterForm(d AuthFormData) templ.Component {
	return authForm("Join", "/user/register", d,
		NewTextInput("name", "name", true).Placeholder("User name").Value(d.Name).Show(),
		NewTextInput("email", "email", true).Type("email").Placeholder("Email").Value(d.Email).Show(),
		NewTextInput("password", "password", true).Type("password").Placeholder("Password").Show(),
		NewTextInput("confirm", "confirm", true).Type("password").Placeholder("Password again").Show(),
		Submit("Create account"),
	)
}

// ResetRequestForm asks for the account email to start a password reset.
func ResetRequestForm(d AuthFormData) templ.Component {
	return authForm("Reset password", "/user/reset", d,
		NewTextInput("email", "email", true).Type("email").Placeholder("Account email").Value(d.Email).Show(),
		Submit("Send reset link"),
	)
}

// UserProfile renders the public account card.
func UserProfile(name string, moderator bool, since string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="col-md-6 mx-auto"><div class="card"><div class="card-body">`)
		fmt.Fprintf(&buf, `<h3 class="card-title">%s`, esc(name))
		if moderator {
			buf.WriteString(` <span class="badge text-bg-info">mod</span>`)
		}
		buf.WriteString(`</h3>`)
		fmt.Fprintf(&buf, `<p class="card-text text-muted">Member since %s</p>`, esc(since))
		buf.WriteString(`</div></div></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// ResetForm sets a new password for a valid reset token.
func ResetForm(token string, d AuthFormData) templ.Component {
	return authForm("Choose a new password", "/user/reset/"+token, d,
		NewTextInput("password", "password", true).Type("password").Placeholder("New password").Show(),
		NewTextInput("confirm", "confirm", true).Type("password").Placeholder("New password again").Show(),
		Submit("Save password"),
	)
}
