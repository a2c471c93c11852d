package server

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

//go:embed static/*
var staticFiles embed.FS

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}
	return subFS
}

// staticAsset is an embedded file with its headers worked out once
type staticAsset struct {
	data        []byte
	contentType string
	etag        string
}

// loadStaticAssets reads every top level file of the static directory
func loadStaticAssets() (map[string]staticAsset, error) {
	fsys := StaticFilesFS()
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list static files: %w", err)
	}

	assets := make(map[string]staticAsset, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", e.Name(), err)
		}
		sum := sha256.Sum256(data)
		assets[e.Name()] = staticAsset{
			data:        data,
			contentType: contentTypeOf(e.Name(), data),
			etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
		}
	}
	return assets, nil
}

func contentTypeOf(name string, data []byte) string {
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	// Ensure UTF-8 for text types when not present
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	return ctype
}

// serveFileHandler serves /static/{file} from the embedded assets, answering
// 304 when the browser already holds the current version
func (s *Server) serveFileHandler() http.HandlerFunc {
	assets, err := loadStaticAssets()
	if err != nil {
		panic("Failed to load static assets: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("file")
		asset, ok := assets[name]
		if !ok {
			logError(r.Method, r.URL.Path, fmt.Errorf("no static file %q", name))
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		w.Header().Set("ETag", asset.etag)
		if r.Header.Get("If-None-Match") == asset.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", asset.contentType)
		_, _ = w.Write(asset.data)
	}
}
