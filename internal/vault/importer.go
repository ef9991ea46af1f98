package vault

import (
	"context"
	"log/slog"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
)

// Summary counts what one Sync pass did.
type Summary struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
}

// Changed reports whether the pass touched any note.
func (s Summary) Changed() bool {
	return s.Created+s.Updated+s.Deleted > 0
}

// Importer mirrors vault files into the notes of one owner.
type Importer struct {
	fs    *FS
	svc   *noteservice.Service
	owner string
	log   *slog.Logger
}

// NewImporter creates an importer writing notes as owner.
func NewImporter(fs *FS, svc *noteservice.Service, owner string, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{fs: fs, svc: svc, owner: owner, log: log}
}

// Sync walks the vault and brings the notes up to date:
//   - new/changed files are parsed and upserted
//   - notes whose file is gone are deleted
//   - links of the owner are rebuilt when anything changed, so references
//     to notes imported later in the same pass resolve
//
// force re-imports files whose body is unchanged (frontmatter-only edits).
// A failing file is logged and counted; it does not stop the pass.
func (im *Importer) Sync(ctx context.Context, force bool) (Summary, error) {
	var sum Summary

	files, err := im.fs.List("")
	if err != nil {
		return sum, err
	}
	checksums, err := im.svc.ImportedChecksums(ctx, im.owner)
	if err != nil {
		return sum, err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		data, err := im.fs.Read(f.Path)
		if err != nil {
			im.log.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			sum.Failed++
			continue
		}
		if !force && checksums[f.Path] == noteservice.ImportChecksum(data) {
			sum.Unchanged++
			continue
		}
		created, err := im.svc.ImportDocument(ctx, im.owner, f.Path, data)
		if err != nil {
			im.log.Warn("sync: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			sum.Failed++
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
		im.log.Debug("sync: imported", slog.String("path", f.Path), slog.Bool("created", created))
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := im.svc.DeleteImported(ctx, im.owner, p); err != nil {
			im.log.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			sum.Failed++
			continue
		}
		sum.Deleted++
		im.log.Debug("sync: removed stale", slog.String("path", p))
	}

	if sum.Changed() {
		if _, err := im.svc.ResyncAll(ctx, im.owner); err != nil {
			return sum, err
		}
	}

	im.log.Info("vault synced",
		slog.String("root", im.fs.Root()),
		slog.Int("created", sum.Created),
		slog.Int("updated", sum.Updated),
		slog.Int("deleted", sum.Deleted),
		slog.Int("failed", sum.Failed))
	return sum, nil
}

// ImportFile imports one file unless its body is unchanged. It reports
// whether a note was created or updated.
func (im *Importer) ImportFile(ctx context.Context, rel string) (bool, error) {
	data, err := im.fs.Read(rel)
	if err != nil {
		return false, err
	}
	checksums, err := im.svc.ImportedChecksums(ctx, im.owner)
	if err != nil {
		return false, err
	}
	if cs, ok := checksums[rel]; ok && cs == noteservice.ImportChecksum(data) {
		return false, nil
	}
	if _, err := im.svc.ImportDocument(ctx, im.owner, rel, data); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the note mirrored from rel, if any.
func (im *Importer) Remove(ctx context.Context, rel string) error {
	return im.svc.DeleteImported(ctx, im.owner, rel)
}
