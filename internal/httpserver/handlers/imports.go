package handlers

import (
	"net/http"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/importer"
)

// RunImport applies a bookmark export as one transactional batch.
func RunImport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content        string  `json:"content"`
			Format         string  `json:"format"`
			AdditionalTags tagList `json:"additional_tags"`
			Filename       string  `json:"filename"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if req.Content == "" {
			writeError(w, d.Logger, domain.Validationf("content", "import content is required"))
			return
		}
		format, err := importer.ParseFormat(req.Format)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		res, err := d.Importer.Import(r.Context(), importer.Request{
			Format:         format,
			Content:        []byte(req.Content),
			AdditionalTags: req.AdditionalTags,
			Filename:       req.Filename,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func ListImports(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := d.Store.ListImports(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]domain.ImportRecord{"imports": records})
	}
}

// UndoImport deletes the bookmarks an import created, by import id (which
// also removes the history record) or by an explicit id list.
func UndoImport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ImportID    int64   `json:"import_id"`
			BookmarkIDs []int64 `json:"bookmark_ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		deleted, err := d.Importer.Undo(r.Context(), req.ImportID, req.BookmarkIDs)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
	}
}
