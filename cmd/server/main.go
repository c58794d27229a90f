package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	liberfly "github.com/liberfly/liberfly-api"
	"github.com/liberfly/liberfly-api/cmd/server/config"
	"github.com/liberfly/liberfly-api/middleware/bearerware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *config.Config
	bunDB  *bun.DB
	repo   liberfly.RepositoryManager
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("liberfly"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	if cfg.GetDebug() {
		fmt.Println(print.MaybeHighlightJSON(cfg))
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	go func() {
		if err := app.srv.Listen(cfg.GetHTTPAddr()); err != nil {
			app.GetLogger("http").Error("server stopped", "error", err)
		}
	}()

	WaitExitSignal()

	if err := app.srv.ShutdownWithTimeout(10 * time.Second); err != nil {
		app.GetLogger("http").Error("shutdown", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.config.GetPersistence()

	db, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*liberfly.User)(nil))
	persistence.RegisterModel((*liberfly.AccessToken)(nil))

	client, err := persistence.New(pcfg, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(liberfly.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = liberfly.NewRepositoryManager(app.bunDB)

	// Opportunistic cleanup; validation also rejects expired tokens so a
	// failure here is not fatal.
	if purged, err := app.repo.AccessTokens().PurgeExpired(ctx); err != nil {
		app.GetLogger("persistence").Warn("purge expired tokens", "error", err)
	} else if purged > 0 {
		app.GetLogger("persistence").Info("purged expired tokens", "count", purged)
	}

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	authCfg := app.config.GetAuth()

	verifier := liberfly.NewCredentialVerifier(app.repo.Users()).
		WithLogger(app.GetLogger("auth:creds"))

	issuer := liberfly.NewTokenIssuer(app.repo.AccessTokens(), authCfg).
		WithLogger(app.GetLogger("auth:tokens")).
		WithTokenName(authCfg.GetTokenName())

	registrar := liberfly.NewRegisterUserHandler(app.repo).
		WithLogger(app.GetLogger("auth:register"))

	validator := liberfly.NewStoreTokenValidator(app.repo.AccessTokens()).
		WithLogger(app.GetLogger("auth:guard"))

	app.srv = fiber.New(fiber.Config{
		AppName:           "liberfly-api",
		UnescapePath:      true,
		EnablePrintRoutes: app.config.GetDebug(),
		StrictRouting:     false,
	})

	guard := bearerware.New(bearerware.Config{
		TokenValidator: validator,
		ContextKey:     authCfg.GetContextKey(),
		TokenLookup:    authCfg.GetTokenLookup(),
		AuthScheme:     authCfg.GetAuthScheme(),
	})

	api := app.srv.Group("/api")

	liberfly.RegisterAPIRoutes(api, guard,
		liberfly.WithVerifier(verifier),
		liberfly.WithIssuer(issuer),
		liberfly.WithRegistrar(registrar),
		liberfly.WithDirectory(liberfly.NewUserDirectory(app.repo.Users())),
		liberfly.WithRevoker(app.repo.AccessTokens()),
		liberfly.WithControllerLogger(app.GetLogger("api")),
		liberfly.WithDebug(app.config.GetDebug()),
		liberfly.WithContextKey(authCfg.GetContextKey()),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
