package models

import "time"

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateOrderRequest is the body for POST /orders, posted by the client right
// after its billing SDK reports a completed purchase.
type CreateOrderRequest struct {
	Plan          string        `json:"plan" binding:"required"`
	BillingCycle  BillingCycle  `json:"billingCycle" binding:"required"`
	Price         float64       `json:"price" binding:"required"`
	StartDate     time.Time     `json:"startDate" binding:"required"`
	EndDate       time.Time     `json:"endDate" binding:"required"`
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required"`
	TransactionID string        `json:"transactionId" binding:"required"`
	EntitlementID string        `json:"entitlementId"`
	AutoRenew     bool          `json:"autoRenew"`
}

// SetPremiumRequest is the body for the admin premium grant endpoint.
type SetPremiumRequest struct {
	IsPremium *bool `json:"isPremium" binding:"required"`
}
