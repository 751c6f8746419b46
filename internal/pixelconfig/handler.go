package pixelconfig

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Handler serves a script that exposes the public pixel id as
// window.__FB_PIXEL_ID for the funnel's client-side pixel.
type Handler struct {
	script []byte
}

// NewHandler renders the snippet once; the pixel id is fixed for the process.
func NewHandler(pixelID string) *Handler {
	// json.Marshal yields a valid JS string literal with <, > and & escaped.
	quoted, _ := json.Marshal(pixelID)
	return &Handler{script: []byte(fmt.Sprintf("window.__FB_PIXEL_ID=%s;", quoted))}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(h.script)
}
