package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/contactdesk/contactdesk/internal/constants"
	"github.com/gin-gonic/gin"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>{{ .AppName }}</title>
</head>
<body>
  <h1>{{ .AppName }}</h1>
  <p>{{ .Tagline }}</p>
  <p>The REST API lives under <code>/api</code>.</p>
</body>
</html>`

var indexPage = func() []byte {
	tmpl := template.Must(template.New("index").Parse(indexTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{
		"AppName": constants.AppName,
		"Tagline": "Your contacts, one API away.",
	}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// Index serves the landing page.
func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}
