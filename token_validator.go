package liberfly

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/liberfly/liberfly-api/middleware/bearerware"
)

// TokenFinder is the store surface the validator needs
type TokenFinder interface {
	GetByValue(ctx context.Context, token string) (*AccessToken, error)
}

// TokenGrant is what a validated bearer token grants the request
type TokenGrant struct {
	TokenID   string
	UserID    string
	ExpiresAt *time.Time
}

func (g TokenGrant) GetUserID() string {
	return g.UserID
}

func (g TokenGrant) GetTokenID() string {
	return g.TokenID
}

var _ bearerware.Grant = TokenGrant{}

// StoreTokenValidator resolves opaque bearer tokens against the access
// token store. Unknown and expired tokens both fail validation; the
// middleware turns either into a generic 401.
type StoreTokenValidator struct {
	store  TokenFinder
	logger Logger
	now    func() time.Time
}

var _ bearerware.TokenValidator = (*StoreTokenValidator)(nil)

func NewStoreTokenValidator(store TokenFinder) *StoreTokenValidator {
	return &StoreTokenValidator{
		store:  store,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (v *StoreTokenValidator) WithLogger(l Logger) *StoreTokenValidator {
	v.logger = l
	return v
}

func (v *StoreTokenValidator) Validate(ctx context.Context, raw string) (bearerware.Grant, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenNotFound
	}

	record, err := v.store.GetByValue(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) || errors.IsNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve access token")
	}

	if record.Expired(v.now()) {
		v.logger.Debug("rejected expired token", "token_id", record.ID.String())
		return nil, ErrTokenExpired
	}

	return TokenGrant{
		TokenID:   record.ID.String(),
		UserID:    record.UserID.String(),
		ExpiresAt: record.ExpiresAt,
	}, nil
}
