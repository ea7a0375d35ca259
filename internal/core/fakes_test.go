package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/decorly/decorly-backend/internal/db"
	"github.com/decorly/decorly-backend/internal/models"
)

// In-memory repository fakes. They copy on read and write the way a document
// store does, so a service mutation only sticks after an explicit Update.

type fakeUserRepo struct {
	users     map[string]*models.User
	nextID    int
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	if user.ID == "" {
		r.nextID++
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	cp := *user
	r.users[user.ID] = &cp
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (string, error) {
	r.add(user)
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

type fakeOrderRepo struct {
	orders map[string]*models.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (r *fakeOrderRepo) add(order *models.Order) *models.Order {
	if order.ID == "" {
		r.nextID++
		order.ID = fmt.Sprintf("order-%d", r.nextID)
	}
	cp := *order
	r.orders[order.ID] = &cp
	return order
}

func (r *fakeOrderRepo) ActivateExclusively(_ context.Context, order *models.Order) (string, error) {
	for _, existing := range r.orders {
		if existing.UserID == order.UserID && existing.IsActive {
			existing.IsActive = false
		}
	}
	r.add(order)
	return order.ID, nil
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) (string, error) {
	r.add(order)
	return order.ID, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *models.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) paidByUser(userID string) []*models.Order {
	var out []*models.Order
	for _, order := range r.orders {
		if order.UserID == userID && order.PaymentStatus == models.PaymentStatusPaid {
			cp := *order
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeOrderRepo) GetActivePaidByUser(_ context.Context, userID string) (*models.Order, error) {
	for _, order := range r.paidByUser(userID) {
		if order.IsActive {
			return order, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeOrderRepo) GetLatestPaidByUser(_ context.Context, userID string) (*models.Order, error) {
	orders := r.paidByUser(userID)
	if len(orders) == 0 {
		return nil, db.ErrNotFound
	}
	return orders[0], nil
}

func (r *fakeOrderRepo) ListPaidByUser(_ context.Context, userID string) ([]*models.Order, error) {
	return r.paidByUser(userID), nil
}

func (r *fakeOrderRepo) GetByTransactionID(_ context.Context, transactionID string) (*models.Order, error) {
	for _, order := range r.orders {
		if order.TransactionID == transactionID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeOrderRepo) activeCount(userID string) int {
	count := 0
	for _, order := range r.orders {
		if order.UserID == userID && order.IsActive {
			count++
		}
	}
	return count
}

type fakeDesignRepo struct {
	designs map[string]*models.Design
	nextID  int
}

func newFakeDesignRepo() *fakeDesignRepo {
	return &fakeDesignRepo{designs: map[string]*models.Design{}}
}

func (r *fakeDesignRepo) add(design *models.Design) *models.Design {
	if design.ID == "" {
		r.nextID++
		design.ID = fmt.Sprintf("design-%d", r.nextID)
	}
	cp := *design
	r.designs[design.ID] = &cp
	return design
}

func (r *fakeDesignRepo) Create(_ context.Context, design *models.Design) (string, error) {
	r.add(design)
	return design.ID, nil
}

func (r *fakeDesignRepo) GetByID(_ context.Context, designID string) (*models.Design, error) {
	design, ok := r.designs[designID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *design
	return &cp, nil
}

func (r *fakeDesignRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]*models.Design, error) {
	var all []*models.Design
	for _, design := range r.designs {
		if design.UserID == userID {
			cp := *design
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeDesignRepo) CountByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, design := range r.designs {
		if design.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeDesignRepo) Delete(_ context.Context, designID string) error {
	if _, ok := r.designs[designID]; !ok {
		return db.ErrNotFound
	}
	delete(r.designs, designID)
	return nil
}

// Collaborator fakes.

type fakeImageStore struct {
	uploads   int
	deleted   []string
	uploadErr error
	deleteErr error
}

func (s *fakeImageStore) UploadImage(_ context.Context, _, folder string) (*StoredImage, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploads++
	return &StoredImage{
		URL:      fmt.Sprintf("https://images.test/%s/%d.png", folder, s.uploads),
		PublicID: fmt.Sprintf("%s/pid-%d", folder, s.uploads),
	}, nil
}

func (s *fakeImageStore) DeleteImage(_ context.Context, publicID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, publicID)
	return nil
}

type fakeGenerator struct {
	result string
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, _ GenerationInput) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.result, nil
}

type fakeSyncer struct {
	calls []map[string]string
	err   error
}

func (s *fakeSyncer) SyncSubscriberAttributes(_ context.Context, _ string, attributes map[string]string) error {
	s.calls = append(s.calls, attributes)
	return s.err
}

// fixedProjector returns a canned status, for tests that do not exercise the
// order-derived projection itself.
type fixedProjector struct {
	status SubscriptionStatus
	err    error
}

func (p *fixedProjector) Status(_ context.Context, _ string) (*SubscriptionStatus, error) {
	if p.err != nil {
		return nil, p.err
	}
	cp := p.status
	return &cp, nil
}
