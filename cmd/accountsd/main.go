package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	accounts "github.com/lsolovey/go-accounts"
)

// persistenceConfig adapts the service configuration to the persistence
// client's expectations.
type persistenceConfig struct {
	cfg *accounts.AppConfig
}

func (p persistenceConfig) GetDebug() bool    { return p.cfg.Debug }
func (p persistenceConfig) GetDriver() string { return "sqlite" }
func (p persistenceConfig) GetServer() string { return "" }
func (p persistenceConfig) GetDatabase() string {
	return p.cfg.GetDatabaseDSN()
}
func (p persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}
func (p persistenceConfig) GetOtelIdentifier() string { return "" }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := accounts.LoadConfig()
	if err != nil {
		return err
	}

	db, err := sql.Open(sqliteshim.ShimName, cfg.GetDatabaseDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*accounts.User)(nil))
	persistence.RegisterModel((*accounts.Contact)(nil))

	client, err := persistence.New(persistenceConfig{cfg: cfg}, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	migrationsFS, err := fs.Sub(accounts.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	repo := accounts.NewRepositoryManager(client.DB())
	auther := accounts.NewAuthenticator(repo, cfg)
	mailer := accounts.NewSendGridMailer(cfg.GetSendGridKey(), cfg.GetSenderAddress())
	codes := accounts.NewCodeIssuer()

	avatars, err := accounts.NewFileAvatarStore(cfg.GetPublicDir())
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      "accountsd",
		ErrorHandler: accounts.NewErrorHandler(nil),
	})

	protect := accounts.NewBearerMiddleware(auther).Protect()

	authAPI := accounts.NewAuthController(repo, auther, codes, mailer, avatars, cfg)
	authAPI.Debug = cfg.Debug
	authAPI.RegisterRoutes(app, protect)

	contactsAPI := accounts.NewContactsController(repo)
	contactsAPI.RegisterRoutes(app, protect)

	// Stored avatars live under the public dir and are served as static files.
	app.Static("/", cfg.GetPublicDir())

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.GetPort()))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}

	return db.Close()
}
