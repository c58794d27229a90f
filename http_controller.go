package liberfly

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/liberfly/liberfly-api/middleware/bearerware"
)

// TokenRevoker deletes a single persisted token, used by logout
type TokenRevoker interface {
	Revoke(ctx context.Context, id uuid.UUID) error
}

type APIControllerRoutes struct {
	Login     string
	Register  string
	Logout    string
	UserIndex string
	UserShow  string
}

type APIController struct {
	Debug      bool
	Logger     Logger
	Verifier   CredentialVerifier
	Issuer     TokenIssuer
	Registrar  UserRegistrar
	Directory  UserDirectory
	Revoker    TokenRevoker
	ContextKey string
	Routes     *APIControllerRoutes
}

type APIControllerOption func(*APIController) *APIController

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger:     defLogger{},
		ContextKey: "grant",
		Routes: &APIControllerRoutes{
			Login:     "/login",
			Register:  "/register",
			Logout:    "/logout",
			UserIndex: "/user/index",
			UserShow:  "/user/:id",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Verifier == nil {
		panic("Missing CredentialVerifier in api controller...")
	}

	if c.Issuer == nil {
		panic("Missing TokenIssuer in api controller...")
	}

	if c.Registrar == nil {
		panic("Missing UserRegistrar in api controller...")
	}

	if c.Directory == nil {
		panic("Missing UserDirectory in api controller...")
	}

	return c
}

func WithVerifier(v CredentialVerifier) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Verifier = v
		return c
	}
}

func WithIssuer(i TokenIssuer) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Issuer = i
		return c
	}
}

func WithRegistrar(r UserRegistrar) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Registrar = r
		return c
	}
}

func WithDirectory(d UserDirectory) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Directory = d
		return c
	}
}

func WithRevoker(r TokenRevoker) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Revoker = r
		return c
	}
}

func WithControllerLogger(l Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Logger = l
		return c
	}
}

func WithDebug(debug bool) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Debug = debug
		return c
	}
}

func WithContextKey(key string) APIControllerOption {
	return func(c *APIController) *APIController {
		c.ContextKey = key
		return c
	}
}

// RegisterAPIRoutes mounts the controller. guard protects the token-only
// routes; login and register stay open.
func RegisterAPIRoutes(app fiber.Router, guard fiber.Handler, opts ...APIControllerOption) *APIController {
	controller := NewAPIController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.Logout, guard, controller.LogoutPost)
	app.Get(controller.Routes.UserIndex, guard, controller.UserIndex)
	app.Get(controller.Routes.UserShow, guard, controller.UserShow)

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports the remember_me flag
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(1, 255),
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 0),
		),
	)
}

func (a *APIController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	// an unparseable body leaves the payload zeroed and falls through to
	// validation, which reports the missing fields as a 422
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("login parse payload: ", "error", err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidationError(c, FormatValidationErrorToMap(err))
	}

	if a.Debug {
		fmt.Println("======= API LOGIN =======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	user, err := a.Verifier.Verify(c.Context(), payload.Email, payload.Password)
	if err != nil {
		if HTTPStatus(err) == fiber.StatusUnauthorized {
			return respondUnauthorized(c)
		}
		a.Logger.Error("login verify error: ", "error", err)
		return respondServerError(c)
	}

	token, err := a.Issuer.Issue(c.Context(), user, payload.GetExtendedSession())
	if err != nil {
		a.Logger.Error("login issue token error: ", "error", err)
		return respondServerError(c)
	}

	return c.JSON(token)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(1, 255),
			is.Email,
		),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0)),
	)
}

func (a *APIController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("register parse payload: ", "error", err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidationError(c, FormatValidationErrorToMap(err))
	}

	user, err := a.Registrar.RegisterUser(c.Context(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})

	if err != nil {
		if HTTPStatus(err) == fiber.StatusUnprocessableEntity {
			return respondValidationError(c, fieldErrorsFromError(err))
		}
		a.Logger.Error("register user error: ", "error", err)
		return respondServerError(c)
	}

	token, err := a.Issuer.Issue(c.Context(), user, false)
	if err != nil {
		a.Logger.Error("register issue token error: ", "error", err)
		return respondServerError(c)
	}

	return c.JSON(token)
}

func (a *APIController) UserIndex(c *fiber.Ctx) error {
	users, err := a.Directory.List(c.Context())
	if err != nil {
		a.Logger.Error("user index error: ", "error", err)
		return respondServerError(c)
	}

	return c.JSON(users)
}

func (a *APIController) UserShow(c *fiber.Ctx) error {
	user, err := a.Directory.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if HTTPStatus(err) == fiber.StatusNotFound {
			return respondNotFound(c)
		}
		a.Logger.Error("user show error: ", "error", err)
		return respondServerError(c)
	}

	return c.JSON(user)
}

func (a *APIController) LogoutPost(c *fiber.Ctx) error {
	if a.Revoker == nil {
		return respondServerError(c)
	}

	grant, ok := bearerware.GrantFromContext(c, a.ContextKey)
	if !ok {
		return respondUnauthorized(c)
	}

	id, err := uuid.Parse(grant.GetTokenID())
	if err != nil {
		return respondUnauthorized(c)
	}

	if err := a.Revoker.Revoke(c.Context(), id); err != nil {
		a.Logger.Error("logout revoke error: ", "error", err)
		return respondServerError(c)
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

func respondValidationError(c *fiber.Ctx, fields map[string][]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fields)
}

func respondUnauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
}

func respondNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not Found"})
}

func respondServerError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
}

func fieldErrorsFromError(err error) map[string][]string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Metadata != nil {
		if fields, ok := richErr.Metadata[FieldErrorsMetadataKey].(map[string][]string); ok {
			return fields
		}
	}

	return map[string][]string{"_": {err.Error()}}
}
