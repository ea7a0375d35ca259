package models

import "time"

// BillingCycle is the renewal period of a subscription plan.
type BillingCycle string

const (
	BillingCycleWeekly BillingCycle = "weekly"
	BillingCycleYearly BillingCycle = "yearly"
)

// Valid reports whether the cycle is one of the supported values.
func (b BillingCycle) Valid() bool {
	return b == BillingCycleWeekly || b == BillingCycleYearly
}

// PaymentStatus is the provider-reported state of the payment behind an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether the status is one of the supported values.
func (p PaymentStatus) Valid() bool {
	return p == PaymentStatusPending || p == PaymentStatusPaid || p == PaymentStatusFailed
}

// Order is one entitlement record: a purchase or renewal transaction as
// reported by the client's billing SDK and later confirmed (or revoked) by the
// billing provider's webhooks. Orders are never deleted; they form the user's
// payment history.
//
// Invariant: at most one order per user has IsActive=true at a time. The
// order repository enforces this with a Firestore transaction when activating
// a new order.
type Order struct {
	ID            string        `json:"id" firestore:"-"`
	UserID        string        `json:"userId" firestore:"userId"`
	Plan          string        `json:"plan" firestore:"plan"`
	Price         float64       `json:"price" firestore:"price"`
	BillingCycle  BillingCycle  `json:"billingCycle" firestore:"billingCycle"`
	PaymentStatus PaymentStatus `json:"paymentStatus" firestore:"paymentStatus"`
	StartDate     time.Time     `json:"startDate" firestore:"startDate"`
	EndDate       time.Time     `json:"endDate" firestore:"endDate"`
	TransactionID string        `json:"transactionId" firestore:"transactionId"`
	EntitlementID string        `json:"entitlementId" firestore:"entitlementId"`
	AutoRenew     bool          `json:"autoRenew" firestore:"autoRenew"`
	IsActive      bool          `json:"isActive" firestore:"isActive"`
	CanceledAt    *time.Time    `json:"canceledAt,omitempty" firestore:"canceledAt"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" firestore:"updatedAt"`
}

// Expired reports whether the order's entitlement window has passed at t.
func (o *Order) Expired(t time.Time) bool {
	return t.After(o.EndDate)
}
