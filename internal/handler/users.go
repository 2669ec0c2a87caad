package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/enum"
)

// UserStore defines the query methods needed by staff management handlers.
// Satisfied by *database.Queries.
type UserStore interface {
	CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	ListUsersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.User, error)
	DeactivateUser(ctx context.Context, arg database.DeactivateUserParams) (uuid.UUID, error)
}

// UserHandler handles staff accounts and restaurant provisioning.
type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers staff endpoints. Expected to be mounted inside a
// restaurant-scoped subrouter: /restaurants/{rid}/users
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Delete("/{id}", h.Deactivate)
}

// RegisterAdminRoutes registers platform-level endpoints. Expected to be
// mounted behind an ADMIN role check.
func (h *UserHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/restaurants", h.CreateRestaurant)
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required"`
}

type createRestaurantRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=300"`

	OwnerEmail    string `json:"owner_email" validate:"required,email"`
	OwnerPassword string `json:"owner_password" validate:"required,min=8,max=72"`
	OwnerFullName string `json:"owner_full_name" validate:"required,max=120"`
}

type restaurantResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	IsActive bool      `json:"is_active"`
}

type createRestaurantResponse struct {
	Restaurant restaurantResponse `json:"restaurant"`
	Owner      userResponse       `json:"owner"`
}

// Create handles POST /restaurants/{rid}/users. Owners add staff to their
// own restaurant; the ADMIN role is never assignable through this endpoint.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	switch req.Role {
	case enum.UserRoleOwner, enum.UserRoleKitchen:
	default:
		writeError(w, http.StatusBadRequest, "role must be OWNER or KITCHEN")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeInternalError(w, err, "hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		RestaurantID:   restaurantID,
		Email:          req.Email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		Role:           database.UserRole(req.Role),
	})
	if err != nil {
		writeInternalError(w, err, "create user")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// List handles GET /restaurants/{rid}/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	users, err := h.store.ListUsersByRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeInternalError(w, err, "list users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, out)
}

// Deactivate handles DELETE /restaurants/{rid}/users/{id}. Deactivation
// rather than deletion; issued tokens expire on their own.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	restaurantID, userID, ok := scopedPathIDs(w, r, "id", "user")
	if !ok {
		return
	}

	if _, err := h.store.DeactivateUser(r.Context(), database.DeactivateUserParams{
		ID:           userID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternalError(w, err, "deactivate user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateRestaurant handles POST /admin/restaurants. Provisions a restaurant
// together with its first OWNER account.
func (h *UserHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req createRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		writeInternalError(w, err, "hash password")
		return
	}

	restaurant, err := h.store.CreateRestaurant(r.Context(), database.CreateRestaurantParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		writeInternalError(w, err, "create restaurant")
		return
	}

	owner, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		RestaurantID:   restaurant.ID,
		Email:          req.OwnerEmail,
		HashedPassword: string(hashed),
		FullName:       req.OwnerFullName,
		Role:           database.UserRoleOWNER,
	})
	if err != nil {
		writeInternalError(w, err, "create owner user")
		return
	}

	writeJSON(w, http.StatusCreated, createRestaurantResponse{
		Restaurant: toRestaurantResponse(restaurant),
		Owner:      toUserResponse(owner),
	})
}

func toRestaurantResponse(r database.Restaurant) restaurantResponse {
	resp := restaurantResponse{
		ID:       r.ID,
		Name:     r.Name,
		IsActive: r.IsActive,
	}
	if r.Address.Valid {
		resp.Address = r.Address.String
	}
	return resp
}
