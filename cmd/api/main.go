package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/stock-app/internal/application/auth"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/internal/infrastructure/asana"
	"github.com/tu-usuario/stock-app/internal/infrastructure/jsonfile"
	"github.com/tu-usuario/stock-app/internal/infrastructure/notify"
	"github.com/tu-usuario/stock-app/internal/infrastructure/postgres"
	"github.com/tu-usuario/stock-app/internal/infrastructure/sheets"
	httpRouter "github.com/tu-usuario/stock-app/internal/interfaces/http"
	"github.com/tu-usuario/stock-app/internal/scheduler"
	"github.com/tu-usuario/stock-app/pkg/config"
	"github.com/tu-usuario/stock-app/pkg/logger"
)

// storeSet repositorios y runner del backend seleccionado.
type storeSet struct {
	stockRepo   repository.StockRepository
	orderRepo   repository.OrderRepository
	historyRepo repository.HistoryRepository
	userRepo    repository.UserRepository
	txRunner    usecase.TxRunner
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Store.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("inicializando persistencia")
	}
	defer store.close()

	notifier := notify.NewLogNotifier(log.Component("notifier"))

	stockUC := usecase.NewStockUseCase(store.txRunner, store.stockRepo)
	orderUC := usecase.NewOrderUseCase(store.txRunner, store.orderRepo, notifier, log.Component("orders"))
	historyUC := usecase.NewHistoryUseCase(store.historyRepo)

	lockouts := auth.NewLockoutStore()
	resetTokens := auth.NewResetTokenStore()
	authUC := auth.NewAuthUseCase(store.userRepo, lockouts, resetTokens, notifier, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.App.BaseURL, log.Component("auth"))

	var asanaClient *asana.Client
	if cfg.Asana.AccessToken != "" {
		asanaClient = asana.NewClient(cfg.Asana.AccessToken)
	} else {
		log.Warn().Msg("ASANA_PERSONAL_ACCESS_TOKEN no configurado; proxy Asana deshabilitado")
	}

	sched := scheduler.New(stockUC, lockouts, resetTokens, log.Component("scheduler"))
	sched.Start()
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:     stockUC,
		OrderUC:     orderUC,
		HistoryUC:   historyUC,
		AuthUC:      authUC,
		AsanaClient: asanaClient,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildStore arma repositorios y TxRunner según STORE_BACKEND.
func buildStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storeSet, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &storeSet{
			stockRepo:   postgres.NewStockRepository(pool),
			orderRepo:   postgres.NewOrderRepository(pool),
			historyRepo: postgres.NewHistoryRepository(pool),
			userRepo:    postgres.NewUserRepository(pool),
			txRunner:    postgres.NewTxRunner(pool),
			close:       pool.Close,
		}, nil

	case config.BackendSheets:
		stockRepo, err := sheets.NewStockRepository(ctx, cfg.Sheets, log.Component("sheets"))
		if err != nil {
			return nil, err
		}
		// Órdenes, historial y usuarios siguen en archivos.
		files, err := jsonfile.Open(cfg.Store.DataDir, cfg.Store.UsersFile)
		if err != nil {
			return nil, err
		}
		return &storeSet{
			stockRepo:   stockRepo,
			orderRepo:   jsonfile.NewOrderRepository(files),
			historyRepo: jsonfile.NewHistoryRepository(files),
			userRepo:    jsonfile.NewUserRepository(files),
			txRunner:    sheets.NewTxRunner(stockRepo, files),
			close:       func() {},
		}, nil

	default: // jsonfile
		files, err := jsonfile.Open(cfg.Store.DataDir, cfg.Store.UsersFile)
		if err != nil {
			return nil, err
		}
		return &storeSet{
			stockRepo:   jsonfile.NewStockRepository(files),
			orderRepo:   jsonfile.NewOrderRepository(files),
			historyRepo: jsonfile.NewHistoryRepository(files),
			userRepo:    jsonfile.NewUserRepository(files),
			txRunner:    jsonfile.NewTxRunner(files),
			close:       func() {},
		}, nil
	}
}
