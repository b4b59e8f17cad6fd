package oauth

import (
	"html/template"
	"net/http"

	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>F1 MCP Server - Authorization</title></head>
<body>
{{- if .Error}}
<h1>Authorization failed</h1>
<p>Error: <code>{{.Error}}</code></p>
{{- if .Description}}
<p>{{.Description}}</p>
{{- end}}
{{- else}}
<h1>Authorization successful</h1>
<p>Authorization code: <code id="code">{{.Code}}</code></p>
<p>State: <code id="state">{{.State}}</code></p>
<p>Exchange the code at the token endpoint to obtain an access token.</p>
{{- end}}
</body>
</html>
`))

type callbackPage struct {
	Code        string
	State       string
	Error       string
	Description string
}

// HandleCallback renders the landing page used when testing the flow by hand
func HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := callbackPage{
		Code:        query.Get("code"),
		State:       query.Get("state"),
		Error:       query.Get("error"),
		Description: query.Get("error_description"),
	}

	status := http.StatusOK
	if page.Error == "" && page.Code == "" {
		page.Error = "invalid_request"
		page.Description = "No authorization code was received."
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := callbackTemplate.Execute(w, page); err != nil {
		logger.Error(logger.HANDLER, "Failed to render callback page: %v", err)
	}
}
