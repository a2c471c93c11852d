package fakeuserrepo

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

var ErrNotFound = errors.New("not found")

type FakeAccountRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
	}
}

func (ar *FakeAccountRepo) Upsert(account *users.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if account.User.ID == "" {
		account.User.ID = uuid.New().String()
	}
	ar.accounts[account.User.ID] = account
	ar.emailIds[normaliseEmail(account.User.Email)] = account.User.ID
	return nil
}

func (ar *FakeAccountRepo) GetByEmail(email string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.emailIds[normaliseEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return ar.accounts[id], nil
}

func (ar *FakeAccountRepo) GetByID(id string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	account, ok := ar.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return account, nil
}

func (ar *FakeAccountRepo) SetPasswordHash(email, passwordHash string) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	id, ok := ar.emailIds[normaliseEmail(email)]
	if !ok {
		return ErrNotFound
	}
	ar.accounts[id].PasswordHash = passwordHash
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
