package liberfly

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// FieldErrorsMetadataKey is where structured errors carry their
// field -> messages payload.
const FieldErrorsMetadataKey = "fields"

// EmailTakenMessage is the field message for duplicate registrations
const EmailTakenMessage = "The email has already been taken."

type RegisterUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// UseHashid derives the user id deterministically from the email
	UseHashid bool
	OnUser    func(*User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

var _ UserRegistrar = (*RegisterUserHandler)(nil)

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	h.logger = l
	return h
}

// RegisterUser runs the registration command and returns the created user
func (h *RegisterUserHandler) RegisterUser(ctx context.Context, event RegisterUserMessage) (*User, error) {
	var user *User
	event.OnUser = func(u *User) {
		user = u
	}

	if err := h.Execute(ctx, event); err != nil {
		return nil, err
	}

	return user, nil
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// the unique constraint on email is the real guard against a
		// concurrent duplicate; this check exists to report the common
		// case as a field error rather than a driver error
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return emailTakenError(event.Email)
		} else if !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Name = event.Name
		user.Email = event.Email
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			if IsUniqueViolation(err) {
				return emailTakenError(event.Email)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if event.OnUser != nil {
		event.OnUser(user)
	}

	return nil
}

func emailTakenError(email string) error {
	return goerrors.New("email already registered", goerrors.CategoryValidation).
		WithTextCode("EMAIL_TAKEN").
		WithMetadata(map[string]any{
			"email": email,
			FieldErrorsMetadataKey: map[string][]string{
				"email": {EmailTakenMessage},
			},
		})
}
