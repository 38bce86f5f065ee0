package httpserver

import (
	"encoding/json"

	"github.com/Skotchmaster/shopfront/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type AdminView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Admin   AdminView `json:"admin"`
}

type RegisterRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Name     string `json:"name"     form:"name"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

// productJSON keeps price and image_url raw: price may be a number or a
// string, and image_url distinguishes absent from null.
type productJSON struct {
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Description *string         `json:"description"`
	ImageURL    json.RawMessage `json:"image_url"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Products []models.Product `json:"products"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
