package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/contracts-checker/constants"
)

// Scanner discovers contract documents on the local filesystem.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// HashFile returns the hex sha256 of a file's content.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// ScanDirectory walks root, skips hidden entries if requested, and hashes
// every file with an allowed extension. Files whose content was already
// seen in this scan are marked Deduplicated.
func (s *Scanner) ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []Document
	var stats DirStats
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Document{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		sum, size, err := HashFile(path)
		if err != nil {
			s.logger.Warn("ingest.hash_failed", "path", path, "error", err)
			results = append(results, Document{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		doc := Document{Path: path, HashHex: sum, FileExt: ext, Size: size}
		if info, err := d.Info(); err == nil {
			doc.ModTime = info.ModTime().UTC()
		}
		if first, dup := seen[sum]; dup {
			doc.Deduplicated = true
			stats.Deduplicated++
			s.logger.Info("ingest.duplicate", "path", path, "same_as", first)
		} else {
			seen[sum] = path
		}
		results = append(results, doc)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	s.logger.Info("ingest.scan_complete", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed, "deduplicated", stats.Deduplicated)
	return results, stats, nil
}
