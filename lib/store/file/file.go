// Package file implements the store interface on a local directory. Identities are kept as <label>.id JSON files, the
// same layout a Fabric Node.js SDK file system wallet uses, and checkpoints as <channel>.checkpoint JSON files.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Kodjaoglanian/blockvent/lib/store"
)

const (
	identityExt   = ".id"
	checkpointExt = ".checkpoint"
	dirPerm       = 0o700
	filePerm      = 0o600
)

// File implements a store in a directory.
type File struct {
	dir string
}

// New returns a File store rooted at dir, creating the directory if it does not exist.
func New(dir string) (*File, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("cannot create store directory %s: %w", dir, err)
	}

	return &File{dir: dir}, nil
}

// CloseFile is a no-op kept for symmetry with the database backends.
func (f *File) CloseFile() error {
	return nil
}

// GetIdentity reads the identity saved under label.
func (f *File) GetIdentity(label string) (id store.Identity, err error) {
	err = f.read(label+identityExt, &id)
	if errors.Is(err, store.ErrDataNotFound) {
		err = store.ErrIdentityNotFound
	}

	return
}

// PutIdentity saves the identity under label, replacing any previous one.
func (f *File) PutIdentity(label string, id store.Identity) error {
	if !id.Valid() {
		return store.ErrBadIdentity
	}

	return f.write(label+identityExt, id)
}

// LoadCheckpoint reads the checkpoint saved for channel.
func (f *File) LoadCheckpoint(channel string) (cp store.Checkpoint, err error) {
	err = f.read(channel+checkpointExt, &cp)

	return
}

// SaveCheckpoint saves the checkpoint for channel.
func (f *File) SaveCheckpoint(channel string, cp store.Checkpoint) error {
	return f.write(channel+checkpointExt, cp)
}

func (f *File) read(name string, v interface{}) error {
	b, err := os.ReadFile(filepath.Join(f.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return store.ErrDataNotFound
	}

	if err != nil {
		return fmt.Errorf("cannot read %s: %w", name, err)
	}

	if err = json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("cannot decode %s: %w", name, err)
	}

	return nil
}

// write replaces the file atomically so a crash never leaves a half written identity or checkpoint.
func (f *File) write(name string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", name, err)
	}

	path := filepath.Join(f.dir, filepath.Base(name))

	tmp, err := os.CreateTemp(f.dir, filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", name, err)
	}

	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(b); err != nil {
		tmp.Close()

		return fmt.Errorf("cannot write %s: %w", name, err)
	}

	if err = tmp.Chmod(filePerm); err != nil {
		tmp.Close()

		return fmt.Errorf("cannot write %s: %w", name, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %s: %w", name, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot write %s: %w", name, err)
	}

	return nil
}
