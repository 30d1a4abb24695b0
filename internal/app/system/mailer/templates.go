package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// VerificationEmail carries the one-time code mailed on registration and on
// resend requests.
func VerificationEmail(to, code, expiresIn string) Email {
	return Email{
		To:       to,
		Subject:  "Your PopcornPal verification OTP",
		TextBody: fmt.Sprintf("Your verification OTP is: %s\n\nThis code expires in %s.\n\nHappy Watching...❤️\n", code, expiresIn),
		HTMLBody: renderHTML(codeTemplate, map[string]string{
			"Heading":   "Your verification OTP is:",
			"Code":      code,
			"ExpiresIn": expiresIn,
		}),
	}
}

// WelcomeEmail is sent after a successful email verification.
func WelcomeEmail(to string) Email {
	return Email{
		To:       to,
		Subject:  "Welcome to PopcornPal!🍿",
		TextBody: "Lights! Camera! Popcorn!\nYour email has been verified!\nHappy Watching...❤️\n",
		HTMLBody: `<h2 style="color:Purple">Lights! Camera! Popcorn!</h2>` +
			`<h4>Your email has been verified!</h4>` +
			`<h5>Happy Watching...❤️</h5>`,
	}
}

// PasswordResetEmail carries the reset link with the raw code and user id
// embedded.
func PasswordResetEmail(to, resetURL string) Email {
	return Email{
		To:       to,
		Subject:  "Your Password Reset Link",
		TextBody: fmt.Sprintf("Password reset link: %s\n", resetURL),
		HTMLBody: renderHTML(linkTemplate, map[string]string{
			"Heading": "Pal at your rescue💪⛑️",
			"URL":     resetURL,
			"Label":   "to reset your password.",
		}),
	}
}

// ResetConfirmationEmail confirms a completed password reset.
func ResetConfirmationEmail(to string) Email {
	return Email{
		To:       to,
		Subject:  "Password Reset Successful.",
		TextBody: "Your password has been reset.\nHappy Watching...❤️\n",
		HTMLBody: `<h4>Your password has been reset.</h4><h5>Happy Watching...❤️</h5>`,
	}
}

const codeTemplate = `<h4>{{.Heading}}</h4>
<h1>{{.Code}}</h1>
<p>This code expires in {{.ExpiresIn}}.</p>
<h5>Happy Watching...❤️</h5>`

const linkTemplate = `<h4>{{.Heading}}</h4>
<a href="{{.URL}}">Click here</a>
<span> {{.Label}}</span>`

func renderHTML(tmpl string, data map[string]string) string {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}
