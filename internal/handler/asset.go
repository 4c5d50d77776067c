package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/oppkey/leadboard/internal/apperror"
)

// AssetHandler serves optional display assets (the sales-kit PDFs). A
// missing asset degrades to a 404 with the standard error body; it never
// takes the rest of the dashboard down.
type AssetHandler struct {
	dir    string
	logger *slog.Logger
}

func NewAssetHandler(dir string, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{dir: dir, logger: logger}
}

// HandleGet streams one asset by name.
//
// HTTP: GET /api/assets/{name}
func (h *AssetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, apperror.ValidationFailed("name", "asset name is required"))
		return
	}

	// filepath.Base strips any path component, so "../secrets" cannot
	// escape the asset directory.
	path := filepath.Join(h.dir, filepath.Base(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err == nil {
			err = errors.New("not a regular file")
		}
		h.logger.Warn("asset not found", slog.String("name", name))
		writeError(w, apperror.AssetMissing(name, err))
		return
	}

	http.ServeFile(w, r, path)
}
