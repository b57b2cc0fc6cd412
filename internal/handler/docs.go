package handler

import (
	"html/template"
	"net/http"
)

const specPath = "/docs/openapi.yaml"

// ServeSpec serves the OpenAPI document the docs page loads.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(spec) == 0 {
			RespondAppError(w, ErrResourceNotFound, nil)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(spec)
	}
}

// ServeDocs renders a Swagger UI page pointed at the served OpenAPI document.
func ServeDocs(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		docsPage.Execute(w, struct{ Title, SpecURL string }{title, specPath})
	}
}

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.onload = function () {
  SwaggerUIBundle({
    url: "{{.SpecURL}}",
    dom_id: "#swagger-ui",
    deepLinking: true,
    persistAuthorization: true,
  });
};
</script>
</body>
</html>`))
