package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/liberandum/api/internal/config"
	"github.com/liberandum/api/internal/db"
	"github.com/liberandum/api/internal/repository"
	"github.com/liberandum/api/internal/service"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	AuthService    *service.AuthService
	AccountService *service.AccountService
	TokenService   *service.TokenService
	OTPService     *service.OTPService
	EmailService   *service.EmailService
	GoogleService  *service.GoogleService
	MarketService  *service.MarketService
	Assets         repository.AssetRepository
	Exchanges      repository.ExchangeRepository
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	accountRepository := repository.NewAccountRepository(database)
	codeRepository := repository.NewCodeRepository(database)
	assetRepository := repository.NewAssetRepository(database)
	exchangeRepository := repository.NewExchangeRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	otpService := service.NewOTPService(codeRepository, emailService, cfg.OTPExpiry)
	tokenService := service.NewTokenService(
		accountRepository,
		cfg.JWTSecret,
		cfg.AccessTokenExpiry,
		cfg.RefreshTokenExpiry,
	)
	accountService := service.NewAccountService(accountRepository)
	authService := service.NewAuthService(accountRepository, accountService, otpService, tokenService)
	googleService := service.NewGoogleService(
		accountRepository,
		tokenService,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	marketService := service.NewMarketService(assetRepository, exchangeRepository)

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		AccountService: accountService,
		TokenService:   tokenService,
		OTPService:     otpService,
		EmailService:   emailService,
		GoogleService:  googleService,
		MarketService:  marketService,
		Assets:         assetRepository,
		Exchanges:      exchangeRepository,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
