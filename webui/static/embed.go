// Package static provides the embedded browser assets for the studio UI.
package static

import (
	"embed"
	"io/fs"
)

// StaticFS holds the studio front end: index.html, the stylesheet, and the
// client script. Everything ships inside the binary.
//
//go:embed index.html css js
var StaticFS embed.FS

// GetFS returns the embedded filesystem for use with http.FileServer.
func GetFS() fs.FS {
	return StaticFS
}

// ReadFile reads a single asset from the embedded filesystem.
func ReadFile(name string) ([]byte, error) {
	return StaticFS.ReadFile(name)
}
