package liberfly_test

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-bun"
	liberfly "github.com/liberfly/liberfly-api"
)

// MockVerifier implements liberfly.CredentialVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, email, password string) (*liberfly.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*liberfly.User)
	return user, args.Error(1)
}

// MockIssuer implements liberfly.TokenIssuer
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(ctx context.Context, user *liberfly.User, extended bool) (*liberfly.IssuedToken, error) {
	args := m.Called(ctx, user, extended)
	token, _ := args.Get(0).(*liberfly.IssuedToken)
	return token, args.Error(1)
}

// MockRegistrar implements liberfly.UserRegistrar
type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) RegisterUser(ctx context.Context, msg liberfly.RegisterUserMessage) (*liberfly.User, error) {
	args := m.Called(ctx, msg)
	user, _ := args.Get(0).(*liberfly.User)
	return user, args.Error(1)
}

// MockDirectory implements liberfly.UserDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) List(ctx context.Context) ([]*liberfly.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*liberfly.User)
	return users, args.Error(1)
}

func (m *MockDirectory) GetByID(ctx context.Context, id string) (*liberfly.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*liberfly.User)
	return user, args.Error(1)
}

// MockRevoker implements liberfly.TokenRevoker
type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubUserFinder implements liberfly.UserFinder with canned responses
type stubUserFinder struct {
	user *liberfly.User
	err  error
}

func (s stubUserFinder) GetByEmail(ctx context.Context, email string) (*liberfly.User, error) {
	return s.user, s.err
}

// captureTokenStore implements liberfly.TokenStore and records what the
// issuer persisted.
type captureTokenStore struct {
	created []*liberfly.AccessToken
	err     error
}

func (s *captureTokenStore) Create(ctx context.Context, record *liberfly.AccessToken, criteria ...repository.InsertCriteria) (*liberfly.AccessToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.created = append(s.created, record)
	return record, nil
}

// stubTokenFinder implements liberfly.TokenFinder
type stubTokenFinder struct {
	token *liberfly.AccessToken
	err   error
}

func (s stubTokenFinder) GetByValue(ctx context.Context, value string) (*liberfly.AccessToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

// stubUsers overrides only the repository methods the registration command
// touches; anything else panics via the nil embedded interface.
type stubUsers struct {
	liberfly.Users
	byEmail   map[string]*liberfly.User
	created   []*liberfly.User
	createErr error
}

func (s *stubUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*liberfly.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, liberfly.ErrIdentityNotFound
}

func (s *stubUsers) CreateTx(ctx context.Context, tx bun.IDB, record *liberfly.User, criteria ...repository.InsertCriteria) (*liberfly.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.created = append(s.created, record)
	return record, nil
}

// stubRepoManager implements liberfly.RepositoryManager without a real
// database; RunInTx just invokes the callback.
type stubRepoManager struct {
	users  *stubUsers
	tokens liberfly.AccessTokens
	txErr  error
}

func (s *stubRepoManager) Validate() error {
	return nil
}

func (s *stubRepoManager) MustValidate() {}

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	return f(ctx, bun.Tx{})
}

func (s *stubRepoManager) Users() liberfly.Users {
	return s.users
}

func (s *stubRepoManager) AccessTokens() liberfly.AccessTokens {
	return s.tokens
}
