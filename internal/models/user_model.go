package models

import "time"

// FreeDesignQuota is the number of generations a non-paying, non-premium user
// may perform before being asked to upgrade.
const FreeDesignQuota = 2

// User represents an account in the system. The Firestore document ID doubles
// as the user ID.
//
// IsSubscribed is a cached flag only: the authoritative subscription state is
// always derived from the newest paid Order (see core.SubscriptionStatus).
// Every projection refreshes this cache; it exists so tooling reading the
// collection directly sees a roughly current value, never so code can trust
// it. IsPremium is granted manually by an administrator and IS authoritative.
type User struct {
	ID              string    `json:"id" firestore:"-"`
	Email           string    `json:"email" firestore:"email"`
	FullName        string    `json:"fullName" firestore:"fullName"`
	PasswordHash    []byte    `json:"-" firestore:"passwordHash"`
	FreeDesignsUsed int       `json:"freeDesignsUsed" firestore:"freeDesignsUsed"`
	IsSubscribed    bool      `json:"isSubscribed" firestore:"isSubscribed"`
	IsPremium       bool      `json:"isPremium" firestore:"isPremium"`
	AdCoins         int       `json:"adCoins" firestore:"adCoins"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}
