package httpapi

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// SPAHandler 静态文件存在则直接返回，否则 GET 请求回退到 index.html
type SPAHandler struct {
	dir   string
	files http.Handler
}

func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{dir: dir, files: http.FileServer(http.Dir(dir))}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	if isAPIPath(r.URL.Path) {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		if info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
