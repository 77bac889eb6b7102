package models

import (
	"slices"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

type Profile struct {
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	State         string `json:"state"`
	Username      string `json:"username"`
	SecurityEmail string `json:"securityEmail"`
}

type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	State    string `json:"state"`
	City     string `json:"city"`
	ZipCode  string `json:"zipCode"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// User is an account record as stored in the users collection. Password
// holds the bcrypt hash.
type User struct {
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	Profile         Profile         `json:"profile"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Products        []int           `json:"products"`
	Orders          []int           `json:"orders"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (u *User) SetTimestamps() {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) AddProduct(id int) {
	if !slices.Contains(u.Products, id) {
		u.Products = append(u.Products, id)
	}
}

func (u *User) RemoveProduct(id int) {
	u.Products = slices.DeleteFunc(u.Products, func(p int) bool { return p == id })
}

func (u *User) AddOrder(id int) {
	if !slices.Contains(u.Orders, id) {
		u.Orders = append(u.Orders, id)
	}
}

// Public returns the account without its password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		Profile:         u.Profile,
		ShippingAddress: u.ShippingAddress,
		Products:        u.Products,
		Orders:          u.Orders,
		CreatedAt:       u.CreatedAt,
	}
}

type PublicUser struct {
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	Profile         Profile         `json:"profile"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Products        []int           `json:"products"`
	Orders          []int           `json:"orders"`
	CreatedAt       time.Time       `json:"created_at"`
}

type SignupRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`
	Password        string `json:"password" form:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Name            string `json:"name" form:"name" binding:"required"`
	Role            string `json:"role" form:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" form:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}
