// Package static serves the HTML landing page and the public assets that sit
// beside the API.
package static

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// Site serves index.html from a views filesystem and everything else from an
// assets filesystem.
type Site struct {
	views  fs.FS
	assets fs.FS
	files  http.Handler
}

// New returns a Site over the given filesystems.
func New(views, assets fs.FS) *Site {
	return &Site{
		views:  views,
		assets: assets,
		files:  http.FileServer(http.FS(assets)),
	}
}

// NewDir returns a Site rooted at two directories on disk.
func NewDir(viewsDir, staticDir string) *Site {
	return New(os.DirFS(viewsDir), os.DirFS(staticDir))
}

// Index serves the landing page.
func (s *Site) Index(c *gin.Context) {
	if _, err := fs.Stat(s.views, indexFile); err != nil {
		c.String(http.StatusNotFound, "index page not found")
		return
	}
	http.ServeFileFS(c.Writer, c.Request, s.views, indexFile)
}

// Serve writes the asset named by the request path and reports whether it did.
// Only GET and HEAD requests for regular files are served.
func (s *Site) Serve(c *gin.Context) bool {
	r := c.Request
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	upath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if upath == "" || !fs.ValidPath(upath) {
		return false
	}
	info, err := fs.Stat(s.assets, upath)
	if err != nil || info.IsDir() {
		return false
	}
	s.files.ServeHTTP(c.Writer, r)
	return true
}
