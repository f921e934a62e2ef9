package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/models"
)

// In-memory fakes for the repository and gateway interfaces. Error fields
// let individual tests inject failures on specific operations.

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*models.User
	getErr  error
	deleted []string

	createErr error
	updateErr error
	deleteErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.users, userID)
	r.deleted = append(r.deleted, userID)
	return nil
}

type billingStateWrite struct {
	partnerID     string
	billing       models.BillingState
	businessModel models.BusinessModelState
}

type fakePartnerRepo struct {
	mu       sync.Mutex
	partners map[string]*models.Partner

	ownerErr      error
	createErr     error
	updateErr     error
	deleteErr     error
	setBillingErr error

	billingWrites []billingStateWrite
	deleted       []string
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: map[string]*models.Partner{}}
}

func (r *fakePartnerRepo) Create(_ context.Context, partner *models.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *partner
	r.partners[partner.ID] = &copied
	return nil
}

func (r *fakePartnerRepo) GetByID(_ context.Context, partnerID string) (*models.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	partner, ok := r.partners[partnerID]
	if !ok {
		return nil, fmt.Errorf("business '%s': %w", partnerID, db.ErrNotFound)
	}
	copied := *partner
	return &copied, nil
}

func (r *fakePartnerRepo) GetByOwnerID(_ context.Context, ownerID string) ([]*models.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownerErr != nil {
		return nil, r.ownerErr
	}
	var out []*models.Partner
	for _, partner := range r.partners {
		if partner.UserID == ownerID {
			copied := *partner
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePartnerRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*models.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, partner := range r.partners {
		if partner.Billing.StripeCustomerID == customerID {
			copied := *partner
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("customer '%s': %w", customerID, db.ErrNotFound)
}

func (r *fakePartnerRepo) Update(_ context.Context, partner *models.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	copied := *partner
	r.partners[partner.ID] = &copied
	return nil
}

func (r *fakePartnerRepo) SetStripeCustomerID(_ context.Context, partnerID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	partner, ok := r.partners[partnerID]
	if !ok {
		return db.ErrNotFound
	}
	partner.Billing.StripeCustomerID = customerID
	return nil
}

func (r *fakePartnerRepo) SetBillingState(_ context.Context, partnerID string, billing models.BillingState, businessModel models.BusinessModelState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setBillingErr != nil {
		return r.setBillingErr
	}
	partner, ok := r.partners[partnerID]
	if !ok {
		return db.ErrNotFound
	}
	partner.Billing = billing
	partner.BusinessModel = businessModel
	r.billingWrites = append(r.billingWrites, billingStateWrite{
		partnerID:     partnerID,
		billing:       billing,
		businessModel: businessModel,
	})
	return nil
}

func (r *fakePartnerRepo) Delete(_ context.Context, partnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.partners, partnerID)
	r.deleted = append(r.deleted, partnerID)
	return nil
}

type recordedPayment struct {
	partnerID string
	record    models.PaymentRecord
}

type fakePaymentRepo struct {
	mu        sync.Mutex
	createErr error
	payments  []recordedPayment
}

func (r *fakePaymentRepo) Create(_ context.Context, partnerID string, record *models.PaymentRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.payments = append(r.payments, recordedPayment{partnerID: partnerID, record: *record})
	return fmt.Sprintf("payment_%d", len(r.payments)), nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, logEntry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry)
	return nil
}

// fakeGateway scripts PaymentGateway responses and records every call.
type fakeGateway struct {
	mu sync.Mutex

	createCustomerID  string
	createCustomerErr error
	createdCustomers  []string // emails

	checkoutSession *CheckoutSession
	checkoutErr     error

	portalURL string
	portalErr error

	activeSubs    []string
	listSubsErr   error
	cancelErr     error
	cancelled     []string
	deleteCustErr error
	deletedCusts  []string

	event        *WebhookEvent
	constructErr error
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email, _ string, _ map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createCustomerErr != nil {
		return "", g.createCustomerErr
	}
	g.createdCustomers = append(g.createdCustomers, email)
	return g.createCustomerID, nil
}

func (g *fakeGateway) DeleteCustomer(_ context.Context, customerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteCustErr != nil {
		return g.deleteCustErr
	}
	g.deletedCusts = append(g.deletedCusts, customerID)
	return nil
}

func (g *fakeGateway) ListActiveSubscriptions(_ context.Context, _ string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listSubsErr != nil {
		return nil, g.listSubsErr
	}
	return g.activeSubs, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, subscriptionID)
	return nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, _ string, _ map[string]string) (*CheckoutSession, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return g.checkoutSession, nil
}

func (g *fakeGateway) CreatePortalSession(_ context.Context, _ string) (string, error) {
	if g.portalErr != nil {
		return "", g.portalErr
	}
	return g.portalURL, nil
}

func (g *fakeGateway) ConstructEvent(_ []byte, _ string) (*WebhookEvent, error) {
	if g.constructErr != nil {
		return nil, g.constructErr
	}
	return g.event, nil
}

type fakeIdentityAdmin struct {
	deleteErr error
	deleted   []string

	email       string
	getEmailErr error

	emailTaken    bool
	emailCheckErr error

	setPasswordErr error
	passwords      []string

	setEmailErr error
	emails      []string

	revokeErr error
	revoked   []string

	linkErr error
	links   []string
}

func (a *fakeIdentityAdmin) DeleteUser(_ context.Context, uid string) error {
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deleted = append(a.deleted, uid)
	return nil
}

func (a *fakeIdentityAdmin) GetEmail(_ context.Context, _ string) (string, error) {
	if a.getEmailErr != nil {
		return "", a.getEmailErr
	}
	return a.email, nil
}

func (a *fakeIdentityAdmin) EmailInUse(_ context.Context, _ string) (bool, error) {
	if a.emailCheckErr != nil {
		return false, a.emailCheckErr
	}
	return a.emailTaken, nil
}

func (a *fakeIdentityAdmin) SetPassword(_ context.Context, _, newPassword string) error {
	if a.setPasswordErr != nil {
		return a.setPasswordErr
	}
	a.passwords = append(a.passwords, newPassword)
	return nil
}

func (a *fakeIdentityAdmin) SetEmail(_ context.Context, _, newEmail string) error {
	if a.setEmailErr != nil {
		return a.setEmailErr
	}
	a.emails = append(a.emails, newEmail)
	return nil
}

func (a *fakeIdentityAdmin) RevokeRefreshTokens(_ context.Context, uid string) error {
	if a.revokeErr != nil {
		return a.revokeErr
	}
	a.revoked = append(a.revoked, uid)
	return nil
}

func (a *fakeIdentityAdmin) EmailVerificationLink(_ context.Context, email string) (string, error) {
	if a.linkErr != nil {
		return "", a.linkErr
	}
	link := "https://pedro.app/verify?email=" + email
	a.links = append(a.links, email)
	return link, nil
}

var errBackendDown = errors.New("backend unavailable")
