// Package bearerware guards routes behind opaque bearer tokens. Tokens are
// resolved through a pluggable TokenValidator, typically backed by the
// access token store.
package bearerware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

var (
	defaultTokenLookup         = "header:" + fiber.HeaderAuthorization
	ErrTokenMissingOrMalformed = errors.New("missing or malformed bearer token")
)

// Grant describes a validated token without creating an import cycle with
// the package that owns the token model.
type Grant interface {
	GetUserID() string
	GetTokenID() string
}

// TokenValidator resolves a raw bearer token to a Grant
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Grant, error)
}

type Config struct {
	// Filter skips the middleware when it returns true
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   func(*fiber.Ctx, error) error
	// ContextKey is where the Grant is stored in ctx locals
	ContextKey string
	// TokenLookup is a comma separated list of <source>:<name>, e.g.
	// "header:Authorization,query:auth_token,cookie:token"
	TokenLookup string
	AuthScheme  string
	// TokenValidator is required
	TokenValidator TokenValidator
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, cfg.getExtractors())
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		grant, err := cfg.TokenValidator.Validate(c.Context(), raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, grant)

		return cfg.SuccessHandler(c)
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			// a validator that could not reach its store is an outage,
			// not a bad credential
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryInternal {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Server Error",
				})
			}

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("bearerware: middleware configuration requires a TokenValidator")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "grant"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// GrantFromContext returns the Grant a successful middleware pass stored
// in ctx locals.
func GrantFromContext(c *fiber.Ctx, contextKey string) (Grant, bool) {
	grant, ok := c.Locals(contextKey).(Grant)
	return grant, ok
}

func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:token,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c *fiber.Ctx) (string, error)

// tokenFromHeader returns a function that extracts the token from the
// request header, stripping the auth scheme prefix.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrTokenMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromParam(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
