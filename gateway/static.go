package gateway

import (
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const index = "index.html"

// mimeTypes maps the extensions of the browser client files to their content type.
var mimeTypes = map[string]string{ //nolint:gochecknoglobals // constant table
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// staticHandler serves the file at the request path under the public directory. Paths that are not regular files
// get index.html, so the browser client can handle its own routes.
func (g *Gateway) staticHandler(rw http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	if name == "/" {
		name = "/" + index
	}

	file := filepath.Join(g.public, filepath.FromSlash(name))
	if fi, err := os.Stat(file); err != nil || !fi.Mode().IsRegular() {
		file = filepath.Join(g.public, index)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		log.Printf("httpreq from %v %s %s: %v", r.RemoteAddr, r.Method, r.RequestURI, err)
		rw.Header().Set("Content-Type", "text/plain")
		rw.WriteHeader(http.StatusNotFound)
		_, _ = rw.Write([]byte("file not found"))

		return
	}

	ct, ok := mimeTypes[strings.ToLower(filepath.Ext(file))]
	if !ok {
		ct = "application/octet-stream"
	}

	rw.Header().Set("Content-Type", ct)
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write(data)
}
