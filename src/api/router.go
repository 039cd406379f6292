package api

import (
	"net/http"

	"finhealth-server/src/handlers"
	"finhealth-server/src/metrics"
	"finhealth-server/src/middleware"
	"finhealth-server/src/util"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Store          handlers.Store
	Cache          handlers.Cache
	Tokens         *util.TokenManager
	Metrics        *metrics.HTTP
	AuthLimiter    *middleware.KeyLimiter
	AllowedOrigins []string
	DemoMode       bool
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))
	r.Use(middleware.DemoModeMiddleware(d.DemoMode))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", handlers.Liveness)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	s := d.Store
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck(s))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitMiddleware(d.AuthLimiter)).Group(func(r chi.Router) {
				r.Post("/register", handlers.Register(s, d.Tokens))
				r.Post("/login", handlers.Login(s, d.Tokens))
			})

			r.With(middleware.JWTAuthMiddleware(d.Tokens)).Group(func(r chi.Router) {
				r.Get("/profile", handlers.GetProfile(s))
				r.Put("/profile", handlers.UpdateProfile(s))
				r.Delete("/profile", handlers.DeleteProfile(s, d.Cache))
				r.Post("/change-password", handlers.ChangePassword(s))
			})
		})

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(d.Tokens)).Group(func(r chi.Router) {
			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", handlers.GetExpenses(s))
				r.Post("/", handlers.CreateExpense(s, s, d.Cache))
				r.Get("/{id}", handlers.GetExpenseByID(s))
				r.Put("/{id}", handlers.UpdateExpense(s, d.Cache))
				r.Delete("/{id}", handlers.DeleteExpense(s, d.Cache))
			})

			r.Route("/income", func(r chi.Router) {
				r.Get("/", handlers.GetIncome(s))
				r.Post("/", handlers.CreateIncome(s, d.Cache))
				r.Get("/{id}", handlers.GetIncomeByID(s))
				r.Put("/{id}", handlers.UpdateIncome(s, d.Cache))
				r.Delete("/{id}", handlers.DeleteIncome(s, d.Cache))
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", handlers.GetBudgets(s, s))
				r.Post("/", handlers.CreateBudget(s, d.Cache))
				r.Get("/{id}", handlers.GetBudgetByID(s, s))
				r.Put("/{id}", handlers.UpdateBudget(s, d.Cache))
				r.Delete("/{id}", handlers.DeleteBudget(s, d.Cache))
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", handlers.GetGoals(s))
				r.Post("/", handlers.CreateGoal(s, d.Cache))
				r.Get("/{id}", handlers.GetGoalByID(s))
				r.Put("/{id}", handlers.UpdateGoal(s, d.Cache))
				r.Delete("/{id}", handlers.DeleteGoal(s, d.Cache))
				r.Post("/{id}/contribute", handlers.ContributeToGoal(s, d.Cache))
			})

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", handlers.GetCategoryRules(s))
				r.Post("/", handlers.CreateCategoryRule(s))
				r.Post("/apply", handlers.ApplyCategoryRules(s, s, d.Cache))
				r.Get("/{id}", handlers.GetCategoryRuleByID(s))
				r.Put("/{id}", handlers.UpdateCategoryRule(s))
				r.Delete("/{id}", handlers.DeleteCategoryRule(s))
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/summary", handlers.GetSummary(s, d.Cache))
				r.Get("/trend", handlers.GetTrend(s, d.Cache))
				r.Get("/health-score", handlers.GetHealthScore(s, d.Cache))
			})

			r.Post("/assistant/chat", handlers.Chat(s, d.Cache))
		})
	})

	return r
}
