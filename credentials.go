package liberfly

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserFinder is the store surface the verifier needs
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Verifier checks credentials against stored users. It holds no state and
// performs no writes.
type Verifier struct {
	store  UserFinder
	logger Logger
}

var _ CredentialVerifier = (*Verifier)(nil)

// dummyCredentialHash keeps the unknown-email branch doing the same bcrypt
// work as a real comparison, so a miss is not observable through timing.
var dummyCredentialHash = RandomPasswordHash()

// NewCredentialVerifier will create a new Verifier
func NewCredentialVerifier(store UserFinder) *Verifier {
	return &Verifier{
		store:  store,
		logger: defLogger{},
	}
}

func (v *Verifier) WithLogger(l Logger) *Verifier {
	v.logger = l
	return v
}

// Verify will find the user by email and compare the password against the
// stored hash. Unknown email and wrong password are indistinguishable to
// the caller.
func (v *Verifier) Verify(ctx context.Context, email, password string) (*User, error) {
	user, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			_ = ComparePasswordAndHash(password, dummyCredentialHash)
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		_ = ComparePasswordAndHash(password, dummyCredentialHash)
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		v.logger.Debug("credential mismatch", "email", email)
		return nil, ErrMismatchedHashAndPassword
	}

	return user, nil
}
