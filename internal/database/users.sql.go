package database

import (
	"context"

	"github.com/google/uuid"
)

const createRestaurant = `-- name: CreateRestaurant :one
INSERT INTO restaurants (name, address)
VALUES ($1, $2)
RETURNING id, name, address, is_active, created_at
`

type CreateRestaurantParams struct {
	Name    string
	Address string
}

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, createRestaurant, arg.Name, arg.Address)
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Address, &r.IsActive, &r.CreatedAt)
	return r, err
}

const getRestaurant = `-- name: GetRestaurant :one
SELECT id, name, address, is_active, created_at
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	row := q.db.QueryRow(ctx, getRestaurant, id)
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Address, &r.IsActive, &r.CreatedAt)
	return r, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (restaurant_id, email, hashed_password, full_name, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, restaurant_id, email, hashed_password, full_name, role, is_active, created_at
`

type CreateUserParams struct {
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           UserRole
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.RestaurantID,
		arg.Email,
		arg.HashedPassword,
		arg.FullName,
		arg.Role,
	)
	return scanUser(row)
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, restaurant_id, email, hashed_password, full_name, role, is_active, created_at
FROM users
WHERE email = $1 AND is_active = TRUE
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, restaurant_id, email, hashed_password, full_name, role, is_active, created_at
FROM users
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const listUsersByRestaurant = `-- name: ListUsersByRestaurant :many
SELECT id, restaurant_id, email, hashed_password, full_name, role, is_active, created_at
FROM users
WHERE restaurant_id = $1
ORDER BY full_name
`

func (q *Queries) ListUsersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsersByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const deactivateUser = `-- name: DeactivateUser :one
UPDATE users
SET is_active = FALSE
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeactivateUserParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeactivateUser(ctx context.Context, arg DeactivateUserParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deactivateUser, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

func scanUser(row interface{ Scan(dest ...interface{}) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.RestaurantID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
	)
	return u, err
}
