package sessions

import (
	"encoding/json"
	"sync"

	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// Store persists the Session under fixed keys of a KV medium.
// Reads never fail: a missing or unreadable field comes back empty.
type Store struct {
	kv KV
	mu sync.Mutex
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save writes the non-empty fields of s. Empty fields keep their stored value;
// use Clear to remove them.
func (st *Store) Save(s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.AccessToken != "" {
		if err := st.kv.Set(KeyAccessToken, s.AccessToken); err != nil {
			return errors.Wrapf(errors.Join(errors.ErrStorage, err), "[Store Save] access token")
		}
	}
	if s.RefreshToken != "" {
		if err := st.kv.Set(KeyRefreshToken, s.RefreshToken); err != nil {
			return errors.Wrapf(errors.Join(errors.ErrStorage, err), "[Store Save] refresh token")
		}
	}
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return errors.Wrapf(err, "[Store Save] marshal user")
		}
		if err := st.kv.Set(KeyUser, string(data)); err != nil {
			return errors.Wrapf(errors.Join(errors.ErrStorage, err), "[Store Save] user")
		}
	}
	return nil
}

// Replace makes s the whole stored session: empty fields are deleted rather than
// kept. When a write fails the previous values are written back, so the medium
// holds either the old session or the new one.
func (st *Store) Replace(s Session) error {
	values := map[string]string{KeyAccessToken: s.AccessToken, KeyRefreshToken: s.RefreshToken}
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return errors.Wrapf(err, "[Store Replace] marshal user")
		}
		values[KeyUser] = string(data)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	prev := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		if v := st.get(key); v != "" {
			prev[key] = v
		}
	}

	if err := st.writeAll(values); err != nil {
		if rerr := st.writeAll(prev); rerr != nil {
			log.Error().Err(rerr).Msg("failed to restore the previous session after a failed write")
		}
		return errors.Wrapf(errors.Join(errors.ErrStorage, err), "[Store Replace]")
	}
	return nil
}

// writeAll sets every session key present in values and deletes the others
func (st *Store) writeAll(values map[string]string) error {
	for _, key := range sessionKeys {
		v := values[key]
		if v == "" {
			if err := st.kv.Delete(key); err != nil {
				return err
			}
			continue
		}
		if err := st.kv.Set(key, v); err != nil {
			return err
		}
	}
	return nil
}

// SaveTokens overwrites both tokens, leaving the user untouched
func (st *Store) SaveTokens(t Tokens) error {
	return st.Save(Session{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken})
}

func (st *Store) UpdateAccessToken(token string) error {
	if token == "" {
		return nil
	}
	return st.Save(Session{AccessToken: token})
}

func (st *Store) UpdateRefreshToken(token string) error {
	if token == "" {
		return nil
	}
	return st.Save(Session{RefreshToken: token})
}

// Load reads the persisted session
func (st *Store) Load() Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := Session{
		AccessToken:  st.get(KeyAccessToken),
		RefreshToken: st.get(KeyRefreshToken),
	}

	if raw := st.get(KeyUser); raw != "" && raw != "null" {
		var u users.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			log.Warn().Err(err).Msg("stored user record is not valid JSON, ignoring it")
		} else {
			s.User = &u
		}
	}
	return s
}

// Clear removes every session key
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.kv.Delete(sessionKeys...); err != nil {
		return errors.Wrapf(errors.Join(errors.ErrStorage, err), "[Store Clear]")
	}
	return nil
}

func (st *Store) get(key string) string {
	v, ok, err := st.kv.Get(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read session key")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
