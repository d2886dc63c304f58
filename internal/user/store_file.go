package user

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// userRecord is the on-disk shape: a JSON array of these. The password
// field holds the bcrypt hash, not the plaintext.
type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FileStore keeps every user in memory and rewrites the whole file on each
// successful Create. The rewrite goes through a temp file plus rename so a
// crash mid-write cannot leave a truncated store behind.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	users []User
	log   *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	s := &FileStore{path: path, log: log}
	s.users = s.load()
	return s
}

// load reads the persisted users. A missing file means a fresh install; an
// unreadable one is logged and treated as empty rather than failing startup.
func (s *FileStore) load() []User {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && s.log != nil {
			s.log.Warn("users file unreadable, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}

	var records []userRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		if s.log != nil {
			s.log.Warn("users file corrupt, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}

	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, User{Username: rec.Username, Hash: []byte(rec.Password)})
	}
	return users
}

func (s *FileStore) Ping(ctx context.Context) error { return nil }

func (s *FileStore) Create(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return ErrUserExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.users = append(s.users, User{Username: username, Hash: hash})

	if err := s.persist(); err != nil {
		// keep memory and file in sync: a signup that did not persist
		// did not happen
		s.users = s.users[:len(s.users)-1]
		return err
	}
	return nil
}

func (s *FileStore) Verify(ctx context.Context, username, password string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
			return User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return User{}, ErrInvalidCredentials
}

// persist rewrites the full collection. Caller holds s.mu, which also
// serializes writers.
func (s *FileStore) persist() error {
	records := make([]userRecord, 0, len(s.users))
	for _, u := range s.users {
		records = append(records, userRecord{Username: u.Username, Password: string(u.Hash)})
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "users-*.json")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
