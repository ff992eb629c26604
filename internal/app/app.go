// Package app wires the configured stores, repositories, service and controllers.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"swimclub/internal/adapters/console"
	emailPkg "swimclub/internal/adapters/email"
	"swimclub/internal/adapters/metrics"
	"swimclub/internal/adapters/storage"
	accountStore "swimclub/internal/adapters/storage/account"
	memberStore "swimclub/internal/adapters/storage/member"
	paymentStore "swimclub/internal/adapters/storage/payment"
	"swimclub/internal/adapters/storage/rates"
	"swimclub/internal/application/payments"
	"swimclub/internal/config"
	"swimclub/internal/domain/member"
)

// App is a fully loaded engine.
type App struct {
	Config   *config.Config
	Metrics  *metrics.Metrics
	Members  *memberStore.Repository
	Payments *paymentStore.Repository
	Accounts *accountStore.Repository
	Service  *payments.Service

	MemberController  *console.MemberController
	PaymentController *console.PaymentController

	db *sql.DB
}

// Open builds the engine from cfg and loads every store.
// PRE: cfg has passed Validate
// POST: Members are loaded before payments so payment references resolve;
// a corrupt record aborts with an error. An unreadable member store loads
// payments without resolving their members.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Metrics: metrics.New()}

	open, err := a.storeFactory(ctx)
	if err != nil {
		return nil, err
	}

	a.Members, err = memberStore.Open(ctx, open(cfg.Files.Members), cfg.Storage.Delimiter)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load members: %w", err)
	}

	a.Payments = paymentStore.NewRepository(open(cfg.Files.Payments), open(cfg.Files.Reminders), cfg.Storage.Delimiter)
	if err := a.Payments.Load(ctx, a.Members); err != nil {
		a.Close()
		return nil, fmt.Errorf("load payments: %w", err)
	}

	rateStore := rates.NewStore(open(cfg.Files.Rates))
	initial, err := rateStore.Load(ctx, rates.Rates{Junior: cfg.Fees.DefaultJuniorRate, Senior: cfg.Fees.DefaultSeniorRate})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load rates: %w", err)
	}

	a.Accounts, err = accountStore.Open(ctx, open(cfg.Files.Accounts), cfg.Storage.Delimiter)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	a.Service = payments.New(payments.Deps{
		Members:  a.Members,
		Payments: a.Payments,
		Rates:    rateStore,
		Sender:   newSender(cfg.Email),
		Metrics:  a.Metrics,
	}, payments.Fees{
		PassiveFee:     cfg.Fees.PassiveFee,
		SeniorDiscount: cfg.Fees.SeniorDiscount,
		SeniorAge:      cfg.Fees.SeniorAge,
		JuniorAge:      juniorAge(cfg.Fees.JuniorAge),
	}, initial)

	a.MemberController = console.NewMemberController(a.Members, a.Payments, cfg.Storage.Delimiter)
	a.PaymentController = console.NewPaymentController(a.Service, a.Members)

	slog.Debug("app_opened",
		"backend", cfg.Storage.Backend,
		"members", a.Members.Count(),
		"payments", a.Payments.Count(),
		"accounts", a.Accounts.Count())
	return a, nil
}

// storeFactory returns a constructor of timed record stores for the configured backend.
func (a *App) storeFactory(ctx context.Context) (func(name string) storage.RecordStore, error) {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path := cfg.Path(cfg.Storage.SQLitePath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		db, err := sql.Open("sqlite", storage.DSN(path))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// Full-collection rewrites are serialized by the repositories; one connection suffices.
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("database unreachable: %w", err)
		}
		if err := storage.InitDB(db); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		return func(name string) storage.RecordStore {
			return storage.NewTimedStore(storage.NewSQLiteStore(db, name), a.Metrics, cfg.Storage.SlowOpMs)
		}, nil
	default:
		return func(name string) storage.RecordStore {
			return storage.NewTimedStore(storage.NewFileStore(name, cfg.Path(name)), a.Metrics, cfg.Storage.SlowOpMs)
		}, nil
	}
}

// newSender selects Resend when a key is configured and the logging sender otherwise.
func newSender(cfg config.Email) emailPkg.Sender {
	if cfg.ResendAPIKey != "" {
		slog.Debug("email_sender_configured", "provider", "resend")
		return emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.From, cfg.ReplyTo)
	}
	slog.Debug("email_sender_configured", "provider", "noop")
	return emailPkg.NewNoopSender()
}

// juniorAge keeps the variant boundary and the fee boundary aligned by default.
func juniorAge(configured int) int {
	if configured <= 0 {
		return member.JuniorAgeLimit
	}
	return configured
}

// Close releases the database and writes the metrics textfile when configured.
func (a *App) Close() error {
	var errs []error
	if path := a.Config.Metrics.Textfile; path != "" {
		if err := a.Metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
