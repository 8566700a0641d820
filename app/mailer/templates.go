package mailer

import (
	"html/template"
	"strings"
)

const emailStyle = `
	* { font-family: Consolas, 'Courier New', 'Lucida Console', Monaco, monospace; }
	body {
		line-height: 1.6; color: #ECEDEE; background-color: #000000;
		max-width: 600px; margin: 0 auto; padding: 20px;
	}
	.header {
		background: linear-gradient(135deg, #1e40af 0%, #3b5bdb 50%, #ff6b35 100%);
		color: white !important; padding: 30px 20px; text-align: center;
		border-radius: 12px 12px 0 0;
	}
	.content {
		background-color: #151718; padding: 30px; border-radius: 0 0 12px 12px;
		border: 1px solid rgba(255, 255, 255, 0.1); color: #ECEDEE;
	}
	.button {
		display: inline-block; background-color: #1e40af; color: white !important;
		padding: 14px 32px; text-decoration: none; border-radius: 12px;
		margin: 20px 0; font-weight: 500;
	}
	.security-note {
		background-color: rgba(255, 107, 53, 0.2); border-left: 4px solid #ff6b35;
		padding: 16px; margin: 20px 0; border-radius: 8px; color: #ECEDEE;
	}
	.link-box {
		word-break: break-all; background-color: rgba(255, 255, 255, 0.05);
		padding: 12px; border-radius: 8px; color: #ECEDEE !important;
		border: 1px solid rgba(255, 255, 255, 0.1);
	}
	.footer { text-align: center; margin-top: 30px; color: #888 !important; font-size: 14px; }
	h1, h2 { color: #ECEDEE !important; }
`

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Email Verification</title>
	<style>{{.Style}}</style>
</head>
<body>
	<div class="header"><h1>Welcome, {{.Name}}!</h1></div>
	<div class="content">
		<p>Thanks for signing up. Please verify your email address to activate your account.</p>
		<p style="text-align: center;"><a href="{{.URL}}" class="button">Verify Email</a></p>
		<p>If the button does not work, copy this link into your browser:</p>
		<p class="link-box">{{.URL}}</p>
		<div class="security-note">
			If you did not create an account, you can safely ignore this email.
		</div>
	</div>
	<div class="footer">This is an automated message, please do not reply.</div>
</body>
</html>`))

var passwordResetTemplate = template.Must(template.New("passwordReset").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Password Reset</title>
	<style>{{.Style}}</style>
</head>
<body>
	<div class="header"><h1>Password Reset</h1></div>
	<div class="content">
		<p>Hi {{.Name}},</p>
		<p>We received a request to reset your password. This link expires in one hour.</p>
		<p style="text-align: center;"><a href="{{.URL}}" class="button">Reset Password</a></p>
		<p>If the button does not work, copy this link into your browser:</p>
		<p class="link-box">{{.URL}}</p>
		<div class="security-note">
			If you did not request a password reset, ignore this email; your password will not change.
		</div>
	</div>
	<div class="footer">This is an automated message, please do not reply.</div>
</body>
</html>`))

type emailData struct {
	Style template.CSS
	Name  string
	URL   string
}

func renderVerificationEmail(name, verificationURL string) (string, error) {
	return render(verificationTemplate, name, verificationURL)
}

func renderPasswordResetEmail(name, resetURL string) (string, error) {
	return render(passwordResetTemplate, name, resetURL)
}

func render(tmpl *template.Template, name, link string) (string, error) {
	var sb strings.Builder
	err := tmpl.Execute(&sb, emailData{
		Style: template.CSS(emailStyle),
		Name:  name,
		URL:   link,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
