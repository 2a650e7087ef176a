package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session as a JSON file readable only by its owner.
type FileStore struct {
	path string
	mu   sync.Mutex
	st   state
}

// OpenFile loads the session stored at path. A missing file yields an
// empty session; the file is created on the first write.
func OpenFile(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&fs.st); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return fs, nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string { return fs.path }

func (fs *FileStore) AccessToken() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.st.Token
}

func (fs *FileStore) RefreshToken() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.st.RefreshToken
}

func (fs *FileStore) Company() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.st.Company
}

// SetTokens replaces both tokens with a single file write. On a write
// error the in-memory pair is left as it was.
func (fs *FileStore) SetTokens(p TokenPair) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	next := fs.st
	next.Token = p.AccessToken
	next.RefreshToken = p.RefreshToken
	return fs.commit(next)
}

func (fs *FileStore) SetCompany(company string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	next := fs.st
	next.Company = company
	return fs.commit(next)
}

// Clear drops every stored credential and removes the file.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.st = state{}
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// commit writes next to a temp file and renames it over the session file,
// so a crash never leaves half a token pair on disk.
func (fs *FileStore) commit(next state) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	fs.st = next
	return nil
}
