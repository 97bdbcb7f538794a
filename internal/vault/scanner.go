package vault

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/halcyard/recall/internal/capsule"
	"github.com/halcyard/recall/internal/config"
)

// Scanner walks store and vault directories fresh on every call. No state
// survives between scans, so an abandoned scan needs no cleanup.
type Scanner struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewScanner(cfg *config.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

type fileEntry struct {
	path    string
	modTime time.Time
}

// ScanCapsules parses every structured record under dir. A missing or
// unreadable directory contributes zero candidates; malformed and oversized
// records are skipped individually. Results come back in path order.
func (s *Scanner) ScanCapsules(ctx context.Context, dir string) []*capsule.Capsule {
	files := s.listFiles(ctx, dir, ".json")
	return s.readAll(ctx, files, func(f fileEntry, data []byte) *capsule.Capsule {
		c, err := capsule.ParseJSON(data)
		if err != nil {
			s.logger.Debug("capsule skipped", "path", f.path, "error", err)
			return nil
		}
		return c
	})
}

// ScanNotes reads every markdown note in the named vault folder and wraps
// each as a vault-content capsule.
func (s *Scanner) ScanNotes(ctx context.Context, folder string) []*capsule.Capsule {
	dir := filepath.Join(s.cfg.VaultPath, folder)
	files := s.listFiles(ctx, dir, ".md")
	return s.readAll(ctx, files, func(f fileEntry, data []byte) *capsule.Capsule {
		name := strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
		return capsule.FromMarkdown(folder, name, data, f.modTime)
	})
}

// listFiles walks dir iteratively with a depth-tagged frontier, collecting
// files with the wanted extension. Hidden entries are skipped; recursion
// stops at the configured depth.
func (s *Scanner) listFiles(ctx context.Context, dir, ext string) []fileEntry {
	type frame struct {
		path  string
		depth int
	}
	var files []fileEntry
	frontier := []frame{{path: dir, depth: 0}}

	for len(frontier) > 0 {
		if ctx.Err() != nil {
			break
		}
		f := frontier[0]
		frontier = frontier[1:]

		entries, err := os.ReadDir(f.path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Debug("directory unreadable", "path", f.path, "error", err)
			}
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(f.path, name)
			if e.IsDir() {
				if f.depth+1 <= s.cfg.Scan.MaxDepth {
					frontier = append(frontier, frame{path: full, depth: f.depth + 1})
				}
				continue
			}
			if !strings.EqualFold(filepath.Ext(name), ext) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.Size() > s.cfg.Scan.MaxFileBytes {
				s.logger.Warn("file exceeds size ceiling, skipped",
					"path", full, "size", info.Size())
				continue
			}
			files = append(files, fileEntry{path: full, modTime: info.ModTime()})
		}
	}

	sort.Slice(files, func(a, b int) bool { return files[a].path < files[b].path })
	return files
}

// readAll reads the listed files with bounded concurrency and applies parse
// to each. Slots are positional, so output order matches input order no
// matter which read finishes first. Cancellation abandons unread files and
// returns what completed.
func (s *Scanner) readAll(ctx context.Context, files []fileEntry,
	parse func(fileEntry, []byte) *capsule.Capsule) []*capsule.Capsule {

	if len(files) == 0 {
		return nil
	}
	workers := s.cfg.Scan.Concurrency
	if workers < 1 {
		workers = 1
	}

	slots := make([]*capsule.Capsule, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, f fileEntry) {
			defer wg.Done()
			defer func() { <-sem }()
			data, err := os.ReadFile(f.path)
			if err != nil {
				s.logger.Debug("file unreadable", "path", f.path, "error", err)
				return
			}
			slots[i] = parse(f, data)
		}(i, f)
	}
	wg.Wait()

	out := make([]*capsule.Capsule, 0, len(files))
	for _, c := range slots {
		if c != nil && c.Valid() {
			out = append(out, c)
		}
	}
	return out
}
