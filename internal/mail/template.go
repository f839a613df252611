package mail

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

var htmlInvitation = htmltemplate.Must(htmltemplate.New("invitation.html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Ambassador Invitation</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>Ambassador Invitation</h1>
    <p>Hello {{.AmbassadorName}},</p>
    <p><strong>{{.UniversityName}}</strong> has invited you to become a student ambassador
    and help prospective students learn about life on campus.</p>
    <p><a href="{{.SignupURL}}" style="display: inline-block; padding: 12px 24px; background: #4F46E5; color: #fff; text-decoration: none; border-radius: 6px;">Accept &amp; create your account</a></p>
    <p>Already decided? <a href="{{.AcceptURL}}">Accept</a> or <a href="{{.DeclineURL}}">decline</a> the invitation.</p>
    {{- if .ReplyTo}}
    <p>Questions? Reply to this email to reach {{.UniversityName}} at {{.ReplyTo}}.</p>
    {{- end}}
    <hr>
    <p style="color: #999; font-size: 12px;">This invitation was sent to {{.To}}.</p>
  </div>
</body>
</html>
`))

var textInvitation = texttemplate.Must(texttemplate.New("invitation.txt").Parse(`Ambassador Invitation from {{.UniversityName}}

Hello {{.AmbassadorName}},

{{.UniversityName}} has invited you to become a student ambassador.

Create your account: {{.SignupURL}}
Accept: {{.AcceptURL}}
Decline: {{.DeclineURL}}
`))

// Render returns the subject and the HTML and plain-text bodies.
func Render(inv Invitation) (subject, html, text string, err error) {
	var hb, tb bytes.Buffer
	if err = htmlInvitation.Execute(&hb, inv); err != nil {
		return "", "", "", err
	}
	if err = textInvitation.Execute(&tb, inv); err != nil {
		return "", "", "", err
	}
	return "Ambassador Invitation from " + inv.UniversityName, hb.String(), tb.String(), nil
}
