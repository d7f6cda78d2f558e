package share

import (
	"context"

	"go.uber.org/zap"

	"thudl/internal/models"
)

// Walker enumerates the file tree behind a share key.
type Walker struct {
	session *Session
	logger  *zap.Logger
}

func NewWalker(session *Session, logger *zap.Logger) *Walker {
	return &Walker{session: session, logger: logger}
}

// Walk lists every directory under startPath depth-first and returns the
// file entries accepted by matcher. Directories are tracked with an
// explicit work stack rather than recursion, so arbitrarily deep trees
// cannot exhaust the call stack. A path seen twice is skipped, which keeps
// the walk finite even if the service ever returned a cyclic tree.
//
// Any listing failure aborts the whole walk: a partial manifest would
// misrepresent what the operator is about to approve.
func (w *Walker) Walk(ctx context.Context, key, startPath string, matcher *Matcher) (models.Manifest, error) {
	if startPath == "" {
		startPath = "/"
	}

	var manifest models.Manifest
	visited := make(map[string]bool)
	stack := []string{startPath}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[dir] {
			w.logger.Warn("directory listed twice, skipping", zap.String("path", dir))
			continue
		}
		visited[dir] = true

		entries, err := w.session.ListDir(ctx, key, dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir {
				stack = append(stack, entry.Path())
				continue
			}
			if matcher.Match(entry.Path()) {
				manifest = append(manifest, entry)
			}
		}
	}

	w.logger.Info("enumeration finished",
		zap.Int("directories", len(visited)),
		zap.Int("files", len(manifest)))
	return manifest, nil
}
