package users

// Account is a backend-side user record: the identity snapshot plus credentials.
// Only the fake backend keeps accounts; the console itself only sees User.
type Account struct {
	User         User
	PasswordHash string
	Blocked      bool
}

type AccountRepo interface {
	Upsert(account *Account) error
	GetByEmail(email string) (*Account, error)
	GetByID(ID string) (*Account, error)
	SetPasswordHash(email, passwordHash string) error
}
