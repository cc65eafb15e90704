// Package dashboard embeds the HTML templates and stylesheet of the web UI.
package dashboard

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed assets/style.css
var Assets embed.FS
