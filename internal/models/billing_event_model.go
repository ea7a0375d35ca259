package models

// BillingEventType is the closed set of webhook event types this service
// acts on. The provider sends more types than these; anything outside the set
// is acknowledged and ignored so the provider does not retry it forever.
type BillingEventType string

const (
	BillingEventRenewal      BillingEventType = "RENEWAL"
	BillingEventCancellation BillingEventType = "CANCELLATION"
	BillingEventExpiration   BillingEventType = "EXPIRATION"
)

// Known reports whether the event type is one this service handles.
func (t BillingEventType) Known() bool {
	switch t {
	case BillingEventRenewal, BillingEventCancellation, BillingEventExpiration:
		return true
	}
	return false
}

// BillingEvent is the decoded body of a billing-provider webhook call.
type BillingEvent struct {
	Type           BillingEventType `json:"type"`
	AppUserID      string           `json:"app_user_id"`
	TransactionID  string           `json:"transaction_id"`
	ExpirationAtMs int64            `json:"expiration_at_ms"`
}
