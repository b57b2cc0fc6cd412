package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/api"
	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/backup"
	"github.com/josh-kwaku/edificio/internal/config"
	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/handler"
	"github.com/josh-kwaku/edificio/internal/lock"
	"github.com/josh-kwaku/edificio/internal/pdf"
	"github.com/josh-kwaku/edificio/internal/report"
	"github.com/josh-kwaku/edificio/internal/repository"
	"github.com/josh-kwaku/edificio/internal/server"
	"github.com/josh-kwaku/edificio/internal/service"
	"github.com/josh-kwaku/edificio/internal/service/ledger"
	"github.com/josh-kwaku/edificio/internal/storage"
	"github.com/josh-kwaku/edificio/internal/update"
)

const lockTTL = 30 * time.Second

type locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// app holds every long-lived dependency of the process.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	db           *repository.DB
	users        *repository.UserRepository
	idempotency  *repository.IdempotencyRepository
	transactions *repository.TransactionRepository
	apartmentsDB *repository.ApartmentRepository
	accountsDB   *repository.BankAccountRepository
	movementsDB  *repository.BankMovementRepository

	ledger  *ledger.Service
	reports *report.Service
	notices *service.NoticeService
	logbook *service.LogbookService
	backups *backup.Service

	checks  map[string]handler.Pinger
	closers []func()
}

// openDB connects to the configured database and brings the schema up to date.
func openDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.Dialect(cfg.DatabaseDriver), cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db, logger); err != nil {
		db.Conn().Close()
		return nil, err
	}
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, db: db, checks: map[string]handler.Pinger{"database": db}}
	a.closers = append(a.closers, func() { db.Conn().Close() })

	var locks locker = lock.NewKeyed()
	if cfg.RedisURL != "" {
		rl, err := lock.NewRedisFromURL(ctx, cfg.RedisURL, lockTTL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("redis lock: %w", err)
		}
		locks = rl
		a.closers = append(a.closers, func() { rl.Close() })
		a.checks["redis"] = rl
		logger.Info("payment locks backed by redis")
	}

	a.users = repository.NewUserRepository(db)
	a.idempotency = repository.NewIdempotencyRepository(db)
	a.transactions = repository.NewTransactionRepository(db)
	a.apartmentsDB = repository.NewApartmentRepository(db)
	a.accountsDB = repository.NewBankAccountRepository(db)
	a.movementsDB = repository.NewBankMovementRepository(db)

	allocator := ledger.NewAllocator(a.transactions, db, locks, ledger.AllocatorConfig{
		Mode:        ledger.AllocationMode(cfg.AllocationMode),
		Overpayment: ledger.OverpaymentMode(cfg.OverpaymentMode),
	})
	a.ledger = ledger.NewService(a.transactions, a.apartmentsDB, a.accountsDB, a.movementsDB, allocator, db)
	a.notices = service.NewNoticeService(repository.NewNoticeRepository(db), repository.NewSettingRepository(db))
	a.reports = report.NewService(a.transactions, a.apartmentsDB, a.accountsDB, a.movementsDB, repository.NewNoticeRepository(db), a.notices)
	a.logbook = service.NewLogbookService(repository.NewLogbookRepository(db))

	dbPath := ""
	if db.Dialect() == repository.DialectSQLite {
		dbPath = repository.SQLiteFilePath(cfg.DatabaseURL)
	}
	a.backups = backup.NewService(backup.Config{
		DatabasePath: dbPath,
		FolderName:   cfg.DriveFolderName,
		Dir:          cfg.BackupDir,
	}, db)

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// handlers builds the HTTP layer. The PDF renderer and object storage are optional and
// degrade to 503 responses when unavailable.
func (a *app) handlers(ctx context.Context) (server.Handlers, error) {
	cfg := a.cfg

	documents, err := a.documents()
	if err != nil {
		return server.Handlers{}, err
	}

	var uploads *handler.UploadHandler
	files, err := storage.New(ctx, storage.Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		PublicURL:    cfg.S3PublicURL,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	switch {
	case errors.Is(err, domain.ErrStorageDisabled):
		a.logger.Warn("file uploads disabled: S3 credentials not configured")
		uploads = handler.NewUploadHandler(nil)
	case err != nil:
		return server.Handlers{}, fmt.Errorf("object storage: %w", err)
	default:
		uploads = handler.NewUploadHandler(files)
	}

	tenants := service.NewTenantService(repository.NewTenantRepository(a.db), a.apartmentsDB)
	providers := service.NewProviderService(repository.NewProviderRepository(a.db))
	bank := service.NewBankService(a.accountsDB, a.movementsDB, repository.NewProviderRepository(a.db))

	return server.Handlers{
		Health:       handler.NewHealthHandler(Version, a.checks),
		Auth:         handler.NewAuthHandler(a.users, auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)),
		Dashboard:    handler.NewDashboardHandler(service.NewDashboardService(a.apartmentsDB, a.transactions)),
		Apartments:   handler.NewApartmentHandler(service.NewApartmentService(a.apartmentsDB), tenants, a.ledger, a.reports, documents),
		Tenants:      handler.NewTenantHandler(tenants),
		Providers:    handler.NewProviderHandler(providers, a.notices, documents),
		Bank:         handler.NewBankHandler(bank, a.reports, documents),
		Transactions: handler.NewTransactionHandler(a.ledger, a.reports, documents),
		Logbook:      handler.NewLogbookHandler(a.logbook, a.notices, documents),
		Reports:      handler.NewReportHandler(a.reports, a.notices, documents),
		Uploads:      uploads,
		Backups:      handler.NewBackupHandler(a.backups, cfg.BackupDir),
		Updates:      handler.NewUpdateHandler(update.NewChecker(cfg.UpdateFeedURL, Version)),
	}, nil
}

func (a *app) documents() (*pdf.Documents, error) {
	renderer := pdf.NewChromeRenderer(pdf.ChromeConfig{
		ExecPath:  a.cfg.ChromePath,
		RemoteURL: a.cfg.ChromeRemoteURL,
		Timeout:   a.cfg.PDFTimeout,
		NoSandbox: a.cfg.ChromeNoSandbox,
	}, a.logger)
	if cr, ok := renderer.(*pdf.ChromeRenderer); ok {
		a.closers = append(a.closers, cr.Close)
	}
	documents, err := pdf.NewDocuments(renderer, pdf.Building{Name: a.cfg.BuildingName, Address: a.cfg.BuildingAddress})
	if err != nil {
		return nil, fmt.Errorf("pdf templates: %w", err)
	}
	return documents, nil
}

func (a *app) routerOptions() server.Options {
	return server.Options{
		Tokens:         auth.NewIssuer(a.cfg.JWTSecret, a.cfg.JWTExpiry),
		Idempotency:    a.idempotency,
		RequestTimeout: a.cfg.RequestTimeout,
		Spec:           api.Spec,
	}
}

// ensureAdmin creates the first administrator from ADMIN_EMAIL and ADMIN_PASSWORD when
// the users table is empty.
func (a *app) ensureAdmin(ctx context.Context) error {
	n, err := a.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("ensureAdmin: %w", err)
	}
	if n > 0 {
		return nil
	}
	if a.cfg.AdminEmail == "" || a.cfg.AdminPassword == "" {
		a.logger.Warn("no administrator exists; set ADMIN_EMAIL and ADMIN_PASSWORD or run 'edificio user create'")
		return nil
	}
	u, err := createUser(ctx, a.users, a.cfg.AdminEmail, a.cfg.AdminName, a.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("ensureAdmin: %w", err)
	}
	a.logger.Info("administrator created", "user_id", u.ID, "email", u.Email)
	return nil
}

func createUser(ctx context.Context, users *repository.UserRepository, email, name, password string) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
