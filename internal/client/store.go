package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSession means no restorable session is persisted. A partially
// written or unparseable file reports the same: one bad field invalidates
// the whole set.
var ErrNoSession = errors.New("no persisted session")

type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Store persists the client's mirror of the session between runs. The
// server remains the source of truth; this copy can go stale or be
// invalidated at any time.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// storedSession is the on-disk envelope: the browser front end keeps the
// same three keys in local storage, with userData as an embedded JSON
// document.
type storedSession struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	UserData     string `json:"userData"`
}

// FileStore keeps the session in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, ErrNoSession
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Session{}, ErrNoSession
	}
	if stored.Token == "" || stored.RefreshToken == "" || stored.UserData == "" {
		return Session{}, ErrNoSession
	}

	var user User
	if err := json.Unmarshal([]byte(stored.UserData), &user); err != nil {
		return Session{}, ErrNoSession
	}

	return Session{
		User:         user,
		AccessToken:  stored.Token,
		RefreshToken: stored.RefreshToken,
	}, nil
}

func (s *FileStore) Save(sess Session) error {
	userData, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(storedSession{
		Token:        sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		UserData:     string(userData),
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
