// Package storage persists YAML artifacts on the filesystem.
//
// Every write goes through an atomic temp-file rename so a reader never
// observes a half-written document, and advisory file locks serialize access
// to individual files across processes. Locks protect single files only;
// invariants spanning multiple files are re-checked by the services.
package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	apperrors "github.com/lorekeep/lorekeep/internal/errors"
)

// lockRetryDelay is the poll interval while waiting on an advisory lock.
const lockRetryDelay = 10 * time.Millisecond

// Store reads and writes artifacts under the two storage roots.
type Store struct {
	campaignsDir string
	playersDir   string
}

// Open creates both storage roots if needed and returns a store over them.
func Open(campaignsDir, playersDir string) (*Store, error) {
	for _, dir := range []string{campaignsDir, playersDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.IO(err, "create storage root %s", dir)
		}
	}
	return &Store{campaignsDir: campaignsDir, playersDir: playersDir}, nil
}

// Save atomically writes a document to path. The document is marshaled to
// YAML, written to an exclusively locked sibling temp file, synced, and
// renamed over the destination. On any failure the temp file is removed and
// the destination is left untouched.
func (s *Store) Save(ctx context.Context, path string, doc any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.IO(err, "create directory %s", dir)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return apperrors.IO(err, "encode %s", filepath.Base(path))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.IO(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	discard := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	lock := flock.New(tmpName)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		discard()
		if err == nil {
			err = ctx.Err()
		}
		return apperrors.IO(err, "lock temp file for %s", path)
	}
	defer lock.Unlock()

	if _, err := tmp.Write(data); err != nil {
		discard()
		return apperrors.IO(err, "write temp file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		discard()
		return apperrors.IO(err, "sync temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.IO(err, "close temp file for %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.IO(err, "replace %s", path)
	}
	return nil
}

// Load reads the document at path into out under a shared lock. A missing
// file yields a NotFound error; a document with unknown fields yields a
// Validation error.
func (s *Store) Load(ctx context.Context, path string, out any) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFoundf("%s does not exist", filepath.Base(path))
		}
		return apperrors.IO(err, "stat %s", path)
	}

	lock := flock.New(path)
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = ctx.Err()
		}
		return apperrors.IO(err, "lock %s", path)
	}
	data, readErr := os.ReadFile(path)
	unlockErr := lock.Unlock()
	if readErr != nil {
		return apperrors.IO(readErr, "read %s", path)
	}
	if unlockErr != nil {
		return apperrors.IO(unlockErr, "unlock %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return apperrors.Validationf("decode %s: %v", filepath.Base(path), err)
	}
	return nil
}

// List returns the sorted paths of .yaml files directly under dir, optionally
// filtered by filename prefix. A missing directory yields an empty list.
func (s *Store) List(ctx context.Context, dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.IO(err, "read directory %s", dir)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// Delete removes the file at path. Removing a missing file is a no-op.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.IO(err, "remove %s", path)
	}
	return nil
}

// RemoveAll removes a directory tree. Removing a missing tree is a no-op.
func (s *Store) RemoveAll(ctx context.Context, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return apperrors.IO(err, "remove %s", dir)
	}
	return nil
}

// CampaignIDs returns the sorted ids of campaigns that have a campaign.yaml.
func (s *Store) CampaignIDs(ctx context.Context) ([]string, error) {
	return s.scanRoots(ctx, s.campaignsDir, "campaign.yaml")
}

// PlayerIDs returns the sorted ids of players that have a player.yaml.
func (s *Store) PlayerIDs(ctx context.Context) ([]string, error) {
	return s.scanRoots(ctx, s.playersDir, "player.yaml")
}

func (s *Store) scanRoots(_ context.Context, root, marker string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.IO(err, "read directory %s", root)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), marker)); err != nil {
			continue
		}
		out = append(out, entry.Name())
	}
	sort.Strings(out)
	return out, nil
}
