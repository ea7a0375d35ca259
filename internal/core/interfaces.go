package core

import (
	"context"
	"time"

	"github.com/decorly/decorly-backend/internal/models"
)

// SubscriptionStatus is the projection of a user's access level derived from
// their newest paid order. It is recomputed on every read; the cached
// User.IsSubscribed flag is refreshed from it, never the other way around.
type SubscriptionStatus struct {
	IsSubscribed        bool       `json:"isSubscribed"`
	AutoRenew           bool       `json:"autoRenew"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
}

// StatusProjector computes the current SubscriptionStatus for a user.
type StatusProjector interface {
	Status(ctx context.Context, userID string) (*SubscriptionStatus, error)
}

// UserService manages accounts, the free-generation counter and ad coins.
type UserService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, *SubscriptionStatus, error)
	GrantAdReward(ctx context.Context, userID string) (*models.User, error)
	SpendAdCoin(ctx context.Context, userID string) (*models.User, error)
	SetPremium(ctx context.Context, userID string, premium bool) (*models.User, error)
}

// OrderService is the entitlement store: it records purchases and renewals
// posted by the client and answers subscription-state queries.
type OrderService interface {
	StatusProjector
	UpsertPurchase(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error)
	CancelLatest(ctx context.Context, userID string) (*models.Order, error)
	GetLatest(ctx context.Context, userID string) (*models.Order, error)
	History(ctx context.Context, userID string) ([]*models.Order, error)
}

// WebhookService ingests asynchronous entitlement events from the billing
// provider, the authoritative source for renewal, cancellation and expiry.
type WebhookService interface {
	HandleEvent(ctx context.Context, event models.BillingEvent) error
}

// GenerateDesignInput carries the validated parameters of one generation
// request. Image is a base64 data URI of the user's source photo.
type GenerateDesignInput struct {
	Image        string
	RoomType     string
	DesignStyle  string
	ColorTone    string
	CustomPrompt string
}

// DesignPage is one page of a user's design collection.
type DesignPage struct {
	Output       []*models.Design `json:"output"`
	CurrentPage  int              `json:"currentPage"`
	TotalDesigns int              `json:"totalDesigns"`
	TotalPages   int              `json:"totalPages"`
}

// DesignService orchestrates generation requests and the design collection.
type DesignService interface {
	Generate(ctx context.Context, userID string, input GenerateDesignInput) (*models.Design, error)
	List(ctx context.Context, userID string, page, limit int) (*DesignPage, error)
	Delete(ctx context.Context, userID, designID string) error
}

// StoredImage is the durable reference an ImageStore hands back for an
// uploaded image.
type StoredImage struct {
	URL      string
	PublicID string
}

// ImageStore is the object-storage collaborator holding source and generated
// images.
type ImageStore interface {
	UploadImage(ctx context.Context, dataURI, folder string) (*StoredImage, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// GenerationInput is the request shape of the external generation service.
type GenerationInput struct {
	Image        string
	RoomType     string
	DesignStyle  string
	ColorTone    string
	CustomPrompt string
}

// Generator is the external AI image-generation collaborator. Generate
// returns the generated image as base64 and has no internal retry.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) (string, error)
}

// EntitlementSyncer pushes subscriber attributes to the billing provider.
// All calls are best-effort: failures are logged and swallowed by callers.
type EntitlementSyncer interface {
	SyncSubscriberAttributes(ctx context.Context, appUserID string, attributes map[string]string) error
}
