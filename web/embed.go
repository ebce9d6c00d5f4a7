// Package web embeds the HTML templates rendered by the server.
package web

import "embed"

// TemplatesFS embeds the report document templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
