package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	tasks "github.com/goliatone/go-tasks"
)

func main() {
	ctx := context.Background()

	cfg, err := tasks.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := tasks.RunMigrations(ctx, db, tasks.GetMigrationsFS()); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	registry, err := tasks.NewRegistry(db, cfg)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	engine := django.New("./views", ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	registerRoutes(srv, registry, cfg)

	srv.Serve(cfg.ServerAddr)

	waitExitSignal()
}

func registerRoutes(srv router.Server[*fiber.App], registry *tasks.Registry, cfg tasks.Config) {
	httpAuth := registry.HTTP()

	tasks.RegisterAuthRoutes(srv.Router().Group("/"),
		func(ac *tasks.AuthController) *tasks.AuthController {
			ac.Auther = httpAuth
			ac.Repo = registry.Repos()
			return ac
		})

	protected := httpAuth.ProtectedRoute(cfg, httpAuth.MakeClientRouteAuthErrorHandler(false))
	admin := httpAuth.AdminRoute(cfg, httpAuth.MakeClientRouteAuthErrorHandler(false))

	tasks.RegisterTodoRoutes(
		srv.Router().Group("/"),
		tasks.NewTodosController(registry.Repos(), registry.Policy(), cfg.GetContextKey()),
		protected,
	)

	tasks.RegisterUserRoutes(
		srv.Router().Group("/"),
		tasks.NewUsersController(registry.Repos(), registry.Policy(), cfg.GetContextKey()),
		admin,
	)
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
