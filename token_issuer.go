package liberfly

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenTimeLayout matches the datetime rendering the API contract expects
// for expires_at.
const TokenTimeLayout = "2006-01-02 15:04:05"

// DefaultExtendedTokenTTL is the "remember me" lifetime: one week.
const DefaultExtendedTokenTTL = 7 * 24 * time.Hour

const tokenValueBytes = 32

// TokenStore is the persistence surface the issuer needs
type TokenStore interface {
	Create(ctx context.Context, record *AccessToken, criteria ...repository.InsertCriteria) (*AccessToken, error)
}

// IssuedToken is the envelope returned to clients after login or
// registration. ExpiresAt is nil when the token never expires.
type IssuedToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   *time.Time
}

func (t IssuedToken) MarshalJSON() ([]byte, error) {
	type envelope struct {
		AccessToken string  `json:"access_token"`
		TokenType   string  `json:"token_type"`
		ExpiresAt   *string `json:"expires_at"`
	}

	var expiresAt *string
	if t.ExpiresAt != nil {
		s := t.ExpiresAt.Format(TokenTimeLayout)
		expiresAt = &s
	}

	return json.Marshal(envelope{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresAt:   expiresAt,
	})
}

// Issuer mints opaque bearer tokens and persists them before handing them
// out. Every call creates a new row; tokens already held by the user are
// left alone so multiple sessions can coexist.
type Issuer struct {
	tokens      TokenStore
	defaultTTL  time.Duration
	extendedTTL time.Duration
	tokenName   string
	logger      Logger
}

var _ TokenIssuer = (*Issuer)(nil)

// NewTokenIssuer returns a new Issuer configured from opts
func NewTokenIssuer(tokens TokenStore, opts Config) *Issuer {
	var defaultTTL time.Duration
	if opts.GetTokenExpiration() > 0 {
		defaultTTL = time.Duration(opts.GetTokenExpiration()) * time.Hour
	}

	extendedTTL := DefaultExtendedTokenTTL
	if opts.GetExtendedTokenDuration() > 0 {
		extendedTTL = time.Duration(opts.GetExtendedTokenDuration()) * time.Hour
	}

	return &Issuer{
		tokens:      tokens,
		defaultTTL:  defaultTTL,
		extendedTTL: extendedTTL,
		tokenName:   "API Token",
		logger:      defLogger{},
	}
}

func (s *Issuer) WithLogger(l Logger) *Issuer {
	s.logger = l
	return s
}

func (s *Issuer) WithTokenName(name string) *Issuer {
	s.tokenName = name
	return s
}

// Issue creates, persists, and returns a bearer token bound to user.
// extended requests the "remember me" lifetime instead of the default.
func (s *Issuer) Issue(ctx context.Context, user *User, extended bool) (*IssuedToken, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, errors.New("cannot issue token without a user", errors.CategoryBadInput)
	}

	value, err := generateTokenValue()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate token value")
	}

	now := time.Now()

	var expiresAt *time.Time
	if extended {
		t := now.Add(s.extendedTTL)
		expiresAt = &t
	} else if s.defaultTTL > 0 {
		t := now.Add(s.defaultTTL)
		expiresAt = &t
	}

	record := &AccessToken{
		Token:     value,
		Name:      s.tokenName,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}

	if record, err = s.tokens.Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist access token")
	}

	return &IssuedToken{
		AccessToken: record.Token,
		TokenType:   TokenType,
		ExpiresAt:   record.ExpiresAt,
	}, nil
}

func generateTokenValue() (string, error) {
	buf := make([]byte, tokenValueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
