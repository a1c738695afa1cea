package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/entity/user"
	"max.ks1230/expenses-api/internal/model/auth"
	"max.ks1230/expenses-api/internal/model/expenses"
	"max.ks1230/expenses-api/internal/model/reports"
)

type authService interface {
	Register(ctx context.Context, email, password string) (user.Summary, error)
	Login(ctx context.Context, email, password string) (auth.AccessToken, error)
}

type expenseService interface {
	Create(ctx context.Context, owner uuid.UUID, in expenses.NewExpense) (expense.Record, error)
	List(ctx context.Context, q expenses.ListQuery) ([]expense.Record, error)
	Update(ctx context.Context, owner, id uuid.UUID, patch expense.Patch) (expense.Record, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	Summary(ctx context.Context, q expenses.ListQuery) (reports.Summary, error)
}

type identityExtractor interface {
	Extract(header string, now time.Time) (uuid.UUID, error)
}

type Handler struct {
	auth     authService
	expenses expenseService
	identity identityExtractor
	now      func() time.Time
}

func NewHandler(auth authService, expenses expenseService, identity identityExtractor) *Handler {
	return &Handler{
		auth:     auth,
		expenses: expenses,
		identity: identity,
		now:      time.Now,
	}
}

// Router wires every route. An empty origins list disables CORS headers.
func (h *Handler) Router(origins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(instrument)
	mux.Use(recoverer)
	if len(origins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	mux.Get("/healthz", h.health)

	mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	mux.Route("/expenses", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/", h.createExpense)
		r.Get("/", h.listExpenses)
		r.Get("/summary", h.summary)
		r.Patch("/{id}", h.updateExpense)
		r.Delete("/{id}", h.deleteExpense)
	})

	return mux
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		countAuthFailure(err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	in, err := decodeNewExpense(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.expenses.Create(r.Context(), identityFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := decodeListQuery(identityFrom(r.Context()), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.expenses.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	q, err := decodeListQuery(identityFrom(r.Context()), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.expenses.Summary(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := decodePatch(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.expenses.Update(r.Context(), identityFrom(r.Context()), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err = h.expenses.Delete(r.Context(), identityFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
