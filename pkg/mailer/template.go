package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

const confirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{ .Username | title }},</p>
  <p>Thanks for registering with {{ .AppName }}. Please confirm your email
  address by following the link below:</p>
  <p><a href="{{ .ConfirmURL }}">Confirm email</a></p>
  <p>If you did not create this account, you can ignore this message.</p>
  <img src="{{ .PixelURL }}" width="1" height="1" alt="">
</body>
</html>`

// ConfirmationData feeds the confirmation email template
type ConfirmationData struct {
	Username   string
	AppName    string
	ConfirmURL string
	PixelURL   string
}

var confirmationTmpl = template.Must(
	template.New("confirmation").Funcs(sprig.HtmlFuncMap()).Parse(confirmationTemplate),
)

// RenderConfirmation renders the email-confirmation message body.
// The confirm URL embeds the signed email token.
func RenderConfirmation(data ConfirmationData) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return buf.String(), nil
}

// ConfirmURL builds the link a user follows to confirm their address
func ConfirmURL(baseURL, token string) string {
	return fmt.Sprintf("%s/api/auth/confirmed_email/%s", baseURL, token)
}

// PixelURL builds the tracking-pixel URL that reports an email open
func PixelURL(baseURL, username string) string {
	return fmt.Sprintf("%s/api/auth/opened/%s", baseURL, username)
}
