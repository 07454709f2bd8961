package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"

	"github.com/recalchq/recalc/internal/ctxlog"
	"github.com/recalchq/recalc/internal/fsutil"
)

// ScriptExtension is the file extension of equation scripts.
const ScriptExtension = ".eq"

// loadStatements resolves path into the ordered statement blocks it
// contains. A directory is walked for .eq files; anything else is fetched
// through the afs service, so URL-style locations (file, mem) work too.
func (a *App) loadStatements(ctx context.Context, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	paths := []string{path}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		found, err := fsutil.FindScripts(path, ScriptExtension)
		if err != nil {
			return nil, fmt.Errorf("walking script directory %s: %w", path, err)
		}
		logger.Debug("Script directory resolved.", "path", path, "files", len(found))
		paths = found
	}

	fs := afs.New()
	var statements []string
	for _, p := range paths {
		content, err := fs.DownloadWithURL(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("loading script %s: %w", p, err)
		}
		blocks := splitBlocks(string(content))
		logger.Debug("Script loaded.", "path", p, "blocks", len(blocks))
		statements = append(statements, blocks...)
	}
	return statements, nil
}

// splitBlocks breaks script content into statement blocks: consecutive
// non-blank lines form one block, blank lines separate blocks, and lines
// whose first non-space character is '#' are dropped. Everything else,
// trailing comments included, reaches the language parser untouched.
func splitBlocks(content string) []string {
	var (
		blocks []string
		cur    []string
	)
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Indentation is preserved; Starlark blocks depend on it.
		cur = append(cur, line)
	}
	flush()
	return blocks
}
