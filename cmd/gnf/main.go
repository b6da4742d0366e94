package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnfinvest/gnf/internal/api"
	"github.com/gnfinvest/gnf/internal/approval"
	"github.com/gnfinvest/gnf/internal/catalog"
	"github.com/gnfinvest/gnf/internal/cli"
	"github.com/gnfinvest/gnf/internal/config"
	"github.com/gnfinvest/gnf/internal/db"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/gnfinvest/gnf/internal/ledger"
	"github.com/gnfinvest/gnf/internal/repository"
	"github.com/gnfinvest/gnf/internal/service"
	"github.com/gnfinvest/gnf/internal/wallets"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorMessage(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)
	credRepo := repository.NewSQLiteCredentialRepo(database)
	sessionRepo := repository.NewSQLitePurchaseSessionRepo(database)

	var observer api.Observer = api.NoopObserver{}
	var useCases []service.UseCaseObserver
	logger := slog.New(slog.DiscardHandler)
	if cfg.LogCalls {
		observer = api.NewLogObserver(os.Stderr)
		useCases = append(useCases, service.NewLogUseCaseObserver(os.Stderr))
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	client := api.NewClient(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.HTTPTimeout}, observer)

	dir := wallets.New(client,
		wallets.WithTTL(cfg.WalletTTL),
		wallets.WithStore(service.NewWalletStore(uow)))
	plans := catalog.Default()

	bus := events.NewBus()
	led := ledger.New(client)
	defer led.Attach(bus)()

	purchaseOpts := []service.PurchaseOption{service.WithPaymentWindow(cfg.PaymentWindow)}
	for _, obs := range useCases {
		purchaseOpts = append(purchaseOpts, service.WithPurchaseObserver(obs))
	}

	app := &cli.App{
		Accounts:      service.NewAccountService(client, credRepo, useCases...),
		Purchases:     service.NewPurchaseService(sessionRepo, uow, plans, client, dir, bus, purchaseOpts...),
		Backend:       client,
		Plans:         plans,
		Wallets:       dir,
		Approvals:     approval.NewQueue(client, bus),
		Ledger:        led,
		Bus:           bus,
		Logger:        logger,
		PaymentWindow: cfg.PaymentWindow,
		TickInterval:  cfg.TickInterval,
		WatchSchedule: cfg.WatchSchedule,
	}
	if cfg.WalletTTL > 0 {
		app.WalletRefresh = "@every " + cfg.WalletTTL.String()
	}

	// Detect an interactive terminal; prompts and the TUI flows need one.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
