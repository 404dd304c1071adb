package auth

import "time"

// User carries the body and default ruck weights used to seed new
// tracking sessions.
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Username            string    `json:"username"`
	PasswordHash        string    `json:"-"`
	WeightKg            float64   `json:"weight_kg"`
	DefaultRuckWeightKg float64   `json:"default_ruck_weight_kg"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Email               string  `json:"email"`
	Username            string  `json:"username"`
	Password            string  `json:"password"`
	WeightKg            float64 `json:"weight_kg"`
	DefaultRuckWeightKg float64 `json:"default_ruck_weight_kg"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateWeightsRequest struct {
	WeightKg            float64 `json:"weight_kg"`
	DefaultRuckWeightKg float64 `json:"default_ruck_weight_kg"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
