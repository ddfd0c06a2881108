package api

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SetupStaticRoutes serves the search UI from a directory on disk, with the
// index page at the root.
func SetupStaticRoutes(r *gin.Engine, uiDir string) {
	r.Static("/ui", uiDir)
	r.StaticFile("/", filepath.Join(uiDir, "index.html"))
}
