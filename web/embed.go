// Package web holds the landing page served under /static.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var assets embed.FS

// Static returns the landing page assets rooted at the static directory
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return sub
}
