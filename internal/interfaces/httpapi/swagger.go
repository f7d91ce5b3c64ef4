package httpapi

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"time"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Served with a fixed modtime so clients can revalidate with If-Modified-Since.
var openAPIModTime = time.Now().UTC().Truncate(time.Second)

var swaggerPage = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.AssetBase}}/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="{{.AssetBase}}/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({url: {{.SpecURL}}, dom_id: "#swagger-ui", deepLinking: true});
</script>
</body>
</html>
`))

type swaggerPageData struct {
	Title     string
	AssetBase string
	SpecURL   string
}

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	http.ServeContent(w, r, "openapi.yaml", openAPIModTime, bytes.NewReader(openAPISpec))
}

func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := swaggerPage.Execute(&buf, swaggerPageData{
		Title:     "Pickup Games API",
		AssetBase: "https://unpkg.com/swagger-ui-dist@5",
		SpecURL:   "/openapi.yaml",
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
