package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth"

	"bankclient/internal/infrastructure/ledgerstub"
	"bankclient/internal/shared/auth"
	"bankclient/internal/shared/middleware"
)

// RouterOptions tunes the cross-cutting middleware.
type RouterOptions struct {
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit      int
	AllowedOrigins []string
}

// NewRouter serves the ledger API over bank. Everything except register,
// auth and health requires a bearer token.
func NewRouter(bank *ledgerstub.Bank, tokens *auth.Tokens, opts RouterOptions) http.Handler {
	users := NewUserHandler(bank, tokens)
	accounts := NewAccountHandler(bank)
	cards := NewCardHandler(bank)
	txs := NewTransactionHandler(bank)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Tracing)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", users.HandleRegister)
		r.Post("/auth", users.HandleAuth)
	})

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokens.JWTAuth()))
		r.Use(middleware.Authenticator)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accounts.HandleList)
			r.Post("/", accounts.HandleCreate)
			r.Post("/transfer", accounts.HandleTransfer)
			r.Post("/convert", accounts.HandleConvert)
			r.Get("/rates", accounts.HandleRates)
			r.Post("/find", accounts.HandleFind)
		})

		r.Route("/card", func(r chi.Router) {
			r.Get("/", cards.HandleGet)
			r.Post("/create", cards.HandleCreate)
			r.Post("/credit", cards.HandleCredit)
			r.Post("/debit", cards.HandleDebit)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", txs.HandleList)
			r.Get("/c/{cardId}", txs.HandleListByCard)
			r.Get("/a/{accountId}", txs.HandleListByAccount)
		})
	})

	return r
}
