// Package httpapi exposes the tracker over REST. Handlers stay thin: they
// decode, call the store or the core engine, and encode.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/auth"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/middleware/trace"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/receipts"
)

// Store is everything the handlers need from persistence.
type Store interface {
	CreateUser(ctx context.Context, user core.User) error
	FindUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUser(ctx context.Context, id string) (core.User, error)

	CreateCategory(ctx context.Context, cat core.Category) error
	ListCategoriesByUser(ctx context.Context, userID string) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, id string) (core.Category, error)
	UpdateCategory(ctx context.Context, cat core.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
	CategoryInUse(ctx context.Context, userID, categoryID string) (bool, error)

	CreateIncome(ctx context.Context, inc core.Income) error
	ListIncomesByUser(ctx context.Context, userID string) ([]core.Income, error)
	GetIncome(ctx context.Context, userID, id string) (core.Income, error)
	UpdateIncome(ctx context.Context, inc core.Income) error
	DeleteIncome(ctx context.Context, userID, id string) error

	ListExpensesByUser(ctx context.Context, userID string) ([]core.Expense, error)
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
}

// ExpenseWriter mutates expenses through the orchestration service, so the
// receipt file and the export queue stay in step with the database.
type ExpenseWriter interface {
	Create(ctx context.Context, exp core.Expense) error
	Update(ctx context.Context, exp core.Expense, removedReceipt *core.Receipt) error
	Delete(ctx context.Context, userID, id string) error
}

type Server struct {
	store    Store
	expenses ExpenseWriter
	receipts *receipts.Store
	tokens   *auth.TokenManager
	tracer   *trace.Middleware
	now      func() time.Time
}

func NewServer(store Store, expenses ExpenseWriter, receiptStore *receipts.Store, tokens *auth.TokenManager) *Server {
	return &Server{
		store:    store,
		expenses: expenses,
		receipts: receiptStore,
		tokens:   tokens,
		tracer:   trace.NewMiddleware(clientIP),
		now:      time.Now,
	}
}

// Router builds the route table. Signup and login are the only API routes
// reachable without a bearer token.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.tracer.Handler)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.handleGetCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.handleUpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", s.handleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/incomes", s.handleListIncomes).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleCreateIncome).Methods(http.MethodPost)
	api.HandleFunc("/incomes/{id}", s.handleGetIncome).Methods(http.MethodGet)
	api.HandleFunc("/incomes/{id}", s.handleUpdateIncome).Methods(http.MethodPut)
	api.HandleFunc("/incomes/{id}", s.handleDeleteIncome).Methods(http.MethodDelete)

	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", s.handleGetExpense).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", s.handleUpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)

	api.HandleFunc("/receipts/{id}", s.handleDownloadReceipt).Methods(http.MethodGet)

	api.HandleFunc("/summary", s.handleRangeSummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/monthly", s.handleMonthlySummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/alerts", s.handleBudgetAlerts).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
