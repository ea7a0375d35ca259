package api

import (
	"time"

	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/models"
)

// ErrorResponse is the standard JSON shape for all API errors. Code carries a
// machine-readable discriminator for rejections the client must branch on
// (e.g. UPGRADE_REQUIRED triggers the paywall screen).
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// SuccessResponse is a generic confirmation body for operations with no
// natural payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ProfileResponse is returned by GET /users/me. The subscription block is the
// freshly projected status, not the cached flag.
type ProfileResponse struct {
	User         *models.User             `json:"user"`
	Subscription *core.SubscriptionStatus `json:"subscription"`
}

// CoinBalanceResponse is returned by the ad-coin endpoints.
type CoinBalanceResponse struct {
	AdCoins int `json:"adCoins"`
}

// OrderResponse mirrors models.Order for API output.
type OrderResponse struct {
	ID            string     `json:"id"`
	Plan          string     `json:"plan"`
	Price         float64    `json:"price"`
	BillingCycle  string     `json:"billingCycle"`
	PaymentStatus string     `json:"paymentStatus"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	TransactionID string     `json:"transactionId"`
	EntitlementID string     `json:"entitlementId,omitempty"`
	AutoRenew     bool       `json:"autoRenew"`
	IsActive      bool       `json:"isActive"`
	CanceledAt    *time.Time `json:"canceledAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		Plan:          o.Plan,
		Price:         o.Price,
		BillingCycle:  string(o.BillingCycle),
		PaymentStatus: string(o.PaymentStatus),
		StartDate:     o.StartDate,
		EndDate:       o.EndDate,
		TransactionID: o.TransactionID,
		EntitlementID: o.EntitlementID,
		AutoRenew:     o.AutoRenew,
		IsActive:      o.IsActive,
		CanceledAt:    o.CanceledAt,
		CreatedAt:     o.CreatedAt,
	}
}
