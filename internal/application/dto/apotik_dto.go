package dto

import "time"

// CreateApotikRequest entrada para crear una apotik.
type CreateApotikRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// UpdateApotikRequest entrada para actualizar una apotik.
type UpdateApotikRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Phone   *string `json:"phone"`
	Active  *bool   `json:"active"`
}

// ApotikResponse salida de una apotik.
type ApotikResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApotikListResponse lista de apotik.
type ApotikListResponse struct {
	Items []ApotikResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
