package stub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/sweetshop/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler serves the storefront REST contract over the in-memory store.
type Handler struct {
	store    *Store
	tokens   *TokenService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new stub API handler.
func NewHandler(store *Store, tokens *TokenService, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger.With("component", "stub"),
	}
}

// RegisterRoutes registers the HTTP routes of the stub backend.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/token", h.Token)
	r.Post("/register", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(h.requireToken)
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.FindProduct)
		r.Post("/purchase/{id}", h.Purchase)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSeller)
			r.Post("/products", h.CreateProduct)
			r.Post("/restock/{id}", h.Restock)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Token implements the password grant: form-encoded credentials in, signed
// bearer token out.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		web.RespondDetail(w, h.logger, http.StatusBadRequest, "Invalid form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, ok := h.store.FindUser(username)
	if !ok || !CheckPassword(user.PasswordHash, password) {
		web.RespondDetail(w, h.logger, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	token, err := h.tokens.Issue(user.Username, user.Role)
	if err != nil {
		h.logger.Error("Error issuing token", "error", err)
		web.RespondDetail(w, h.logger, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// registerDto is the registration payload.
type registerDto struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"required,oneof=customer seller"`
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto registerDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		web.RespondDetail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondDetail(w, h.logger, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}
	hash, err := HashPassword(dto.Password)
	if err != nil {
		h.logger.Error("Error hashing password", "error", err)
		web.RespondDetail(w, h.logger, http.StatusInternalServerError, "Failed to register user")
		return
	}
	user, err := h.store.CreateUser(dto.Username, dto.Email, hash, dto.Role)
	if err != nil {
		web.RespondDetail(w, h.logger, http.StatusBadRequest, "Username or email already registered")
		return
	}
	h.logger.Info("User registered", "username", user.Username, "role", user.Role)
	web.RespondJSON(w, h.logger, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// ListProducts returns the catalog, filtered by the optional search term.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	web.RespondJSON(w, h.logger, http.StatusOK, h.store.List(search))
}

// FindProduct returns a single product by ID.
func (h *Handler) FindProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.store.FindProduct(id)
	if err != nil {
		web.RespondDetail(w, h.logger, http.StatusNotFound, "Sweet not found")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, p)
}

// createProductDto is the create-product payload.
type createProductDto struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Quantity    int     `json:"quantity"    validate:"gte=0"`
}

// CreateProduct adds a product to the catalog. Seller only.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto createProductDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		web.RespondDetail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondDetail(w, h.logger, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}
	p, err := h.store.CreateProduct(dto.Name, dto.Description, dto.Price, dto.Quantity)
	if err != nil {
		web.RespondDetail(w, h.logger, http.StatusBadRequest, "Product name already exists")
		return
	}
	h.logger.Info("Product created", "id", p.ID, "name", p.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, p)
}

// Purchase removes one unit of stock.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.store.Purchase(id)
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			web.RespondDetail(w, h.logger, http.StatusBadRequest,
				fmt.Sprintf("Insufficient stock. Only %d available.", stockErr.Available))
		case errors.Is(err, ErrProductNotFound):
			web.RespondDetail(w, h.logger, http.StatusNotFound, "Sweet not found")
		default:
			web.RespondDetail(w, h.logger, http.StatusInternalServerError, "Purchase failed")
		}
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, p)
}

// restockDto is the restock payload.
type restockDto struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// Restock adds stock to a product. Seller only.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	var dto restockDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		web.RespondDetail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondDetail(w, h.logger, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}
	p, err := h.store.Restock(id, dto.Quantity)
	if err != nil {
		web.RespondDetail(w, h.logger, http.StatusNotFound, "Sweet not found")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, p)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// requireToken rejects requests without a valid bearer token and stores
// the authenticated user in the request context.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			web.RespondDetail(w, h.logger, http.StatusUnauthorized, "Not authenticated")
			return
		}
		username, role, err := h.tokens.Verify(token)
		if err != nil {
			web.RespondDetail(w, h.logger, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(web.WithUser(r.Context(), username, role)))
	})
}

// requireSeller rejects authenticated requests lacking the seller role.
func (h *Handler) requireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := web.GetUser(r.Context())
		if !ok || role != "seller" {
			web.RespondDetail(w, h.logger, http.StatusForbidden, "Operation requires the seller role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validationDetail flattens validator errors into a single detail string.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on rule: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}
