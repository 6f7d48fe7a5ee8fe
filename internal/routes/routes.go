package routes

import (
	"net/http"

	"github.com/liberandum/api/internal/app"
	"github.com/liberandum/api/internal/handler"
	"github.com/liberandum/api/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.TokenService)
	account := handler.NewAccountHandler(app.AccountService)
	oauth := handler.NewOAuthHandler(app.GoogleService)
	market := handler.NewMarketHandler(app.MarketService)
	admin := handler.NewAdminHandler(app.AccountService, app.Assets, app.Exchanges)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Registration and login (two-step, code gated)
	mux.HandleFunc("POST /auth/register", auth.Register)
	mux.HandleFunc("POST /auth/verify-registration", auth.VerifyRegistration)
	mux.HandleFunc("POST /auth/login", auth.Login)
	mux.HandleFunc("POST /auth/verify-login", auth.VerifyLogin)
	mux.HandleFunc("POST /auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /auth/otp/resend", auth.ResendCode)
	mux.HandleFunc("GET /auth/health", auth.Health)

	// Federated login
	mux.HandleFunc("GET /auth/oauth/google/login", oauth.GoogleLogin)
	mux.HandleFunc("GET /auth/oauth/google/callback", oauth.GoogleCallback)
	mux.HandleFunc("POST /auth/oauth/google/auth", oauth.GoogleAuth)
	mux.HandleFunc("GET /auth/oauth/google/status", oauth.GoogleStatus)

	// Market data
	mux.HandleFunc("GET /market/tokens", market.ListAssets)
	mux.HandleFunc("GET /market/tokens/search", market.SearchAssets)
	mux.HandleFunc("GET /market/tokens/{id}", market.AssetByID)
	mux.HandleFunc("GET /market/exchanges", market.ListExchanges)
	mux.HandleFunc("GET /market/exchanges/search", market.SearchExchanges)
	mux.HandleFunc("GET /market/exchanges/{id}", market.ExchangeByID)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("POST /auth/logout", middleware.RequireAuth(auth.Logout))
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(account.Me))
	mux.HandleFunc("PUT /auth/me", middleware.RequireAuth(account.UpdateMe))
	mux.HandleFunc("POST /auth/me/change-password", middleware.RequireAuth(account.ChangePassword))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /admin/accounts", middleware.RequireAdmin(admin.ListAccounts))
	mux.HandleFunc("GET /admin/accounts/{id}", middleware.RequireAdmin(admin.AccountByID))
	mux.HandleFunc("PUT /admin/accounts/{id}/role", middleware.RequireAdmin(admin.ChangeAccountRole))
	mux.HandleFunc("POST /admin/accounts/{id}/activate", middleware.RequireAdmin(admin.ActivateAccount))
	mux.HandleFunc("POST /admin/accounts/{id}/deactivate", middleware.RequireAdmin(admin.DeactivateAccount))

	mux.HandleFunc("POST /admin/assets", middleware.RequireAdmin(admin.CreateAsset))
	mux.HandleFunc("PUT /admin/assets/{id}", middleware.RequireAdmin(admin.UpdateAsset))
	mux.HandleFunc("DELETE /admin/assets/{id}", middleware.RequireAdmin(admin.DeleteAsset))

	mux.HandleFunc("POST /admin/exchanges", middleware.RequireAdmin(admin.CreateExchange))
	mux.HandleFunc("PUT /admin/exchanges/{id}", middleware.RequireAdmin(admin.UpdateExchange))
	mux.HandleFunc("DELETE /admin/exchanges/{id}", middleware.RequireAdmin(admin.DeleteExchange))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.TokenService, app.AccountService),
	)

	return handler
}
