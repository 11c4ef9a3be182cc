package importer

import (
	"context"
	"strings"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/logger"
	"github.com/linkhoard/linkhoard/internal/store"
)

// Engine applies parsed imports to the store. One Import call is one
// transaction; a storage failure mid-batch rolls back every row.
type Engine struct {
	store *store.Store
	log   logger.Logger
}

func New(s *store.Store, log logger.Logger) *Engine {
	return &Engine{store: s, log: log}
}

// Request carries one import batch.
type Request struct {
	Format         Format
	Content        []byte
	AdditionalTags []string
	Filename       string
}

// Result summarizes an applied batch. Errors holds per-candidate skips
// (oversized fields); these do not fail the batch.
type Result struct {
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Total       int      `json:"total"`
	ImportedIDs []int64  `json:"imported_ids"`
	ImportID    int64    `json:"import_id"`
	Errors      []string `json:"errors"`
}

// Import parses and applies a batch. New bookmarks are created public;
// existing ones (matched by exact URL) get a sparse field update and their
// tag set unioned with the candidate's. The history record is written in
// the same transaction.
func (e *Engine) Import(ctx context.Context, req Request) (*Result, error) {
	additional := domain.NormalizeTags(req.AdditionalTags)

	candidates, err := Parse(req.Format, req.Content, additional)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.Validationf("content", "no valid bookmarks found")
	}

	res := &Result{ImportedIDs: []int64{}, Errors: []string{}}
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, c := range candidates {
			in := domain.BookmarkInput{
				URL:         c.URL,
				Title:       c.Title,
				Description: c.Description,
				Tags:        c.Tags,
			}
			if verr := domain.ValidateBookmarkInput(in); verr != nil {
				res.Errors = append(res.Errors, "skipped "+c.URL+": "+verr.Error())
				continue
			}

			existing, err := tx.FindBookmarkByURL(ctx, c.URL)
			if err != nil {
				return err
			}

			var id int64
			if existing != nil {
				id = existing.ID
				if err := tx.SparseUpdateBookmark(ctx, id, c.Title, c.Description); err != nil {
					return err
				}
				merged := domain.NormalizeTags(append(existing.Tags, c.Tags...))
				if err := tx.ReplaceBookmarkTags(ctx, id, merged); err != nil {
					return err
				}
				res.Updated++
			} else {
				id, err = tx.InsertBookmark(ctx, in)
				if err != nil {
					return err
				}
				if err := tx.ReplaceBookmarkTags(ctx, id, c.Tags); err != nil {
					return err
				}
				res.Created++
			}
			res.ImportedIDs = append(res.ImportedIDs, id)
		}

		importID, err := tx.InsertImportRecord(ctx, &domain.ImportRecord{
			Filename:       req.Filename,
			BookmarkIDs:    res.ImportedIDs,
			CreatedCount:   res.Created,
			UpdatedCount:   res.Updated,
			AdditionalTags: strings.Join(additional, ", "),
		})
		if err != nil {
			return err
		}
		res.ImportID = importID
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Total = len(res.ImportedIDs)
	e.log.Info("import applied",
		logger.String("filename", req.Filename),
		logger.Int("created", res.Created),
		logger.Int("updated", res.Updated),
		logger.Int("skipped", len(res.Errors)))
	return res, nil
}

// Undo deletes the bookmarks named by an import. With a positive importID
// the id set comes from the stored record, which is deleted alongside; a
// record whose batch created nothing undoes cleanly with zero deletions.
// Otherwise the caller supplies explicit ids. Missing bookmarks are not an
// error; the count of actually deleted rows is returned.
func (e *Engine) Undo(ctx context.Context, importID int64, ids []int64) (int64, error) {
	fromRecord := importID > 0
	if fromRecord {
		rec, err := e.store.GetImport(ctx, importID)
		if err != nil {
			return 0, err
		}
		if err := e.store.DeleteImport(ctx, importID); err != nil {
			return 0, err
		}
		ids = rec.BookmarkIDs
	}

	clean := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		if fromRecord {
			e.log.Info("import undone", logger.Int64("import_id", importID), logger.Int64("deleted", 0))
			return 0, nil
		}
		return 0, domain.Validationf("bookmark_ids", "bookmark IDs are required")
	}

	deleted, err := e.store.DeleteMany(ctx, clean)
	if err != nil {
		return 0, err
	}
	e.log.Info("import undone", logger.Int64("import_id", importID), logger.Int64("deleted", deleted))
	return deleted, nil
}
