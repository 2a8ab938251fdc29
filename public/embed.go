// Package public embeds the HTML templates and static assets served by the web UI.
package public

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var content embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() (fs.FS, error) {
	return fs.Sub(content, "templates")
}

// StaticFS returns the static asset tree rooted at static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}
