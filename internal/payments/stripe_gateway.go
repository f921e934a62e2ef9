// Package payments implements core.PaymentGateway on top of the Stripe SDK.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"pedro-backend-go/internal/core"
)

// StripeGateway talks to the Stripe API using the account-level secret key.
type StripeGateway struct {
	webhookSecret string
	clientURL     string
}

// NewStripeGateway configures the global Stripe key and returns a gateway.
func NewStripeGateway(secretKey, webhookSecret, clientURL string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		webhookSecret: webhookSecret,
		clientURL:     clientURL,
	}
}

// CreateCustomer creates a Stripe customer for a business.
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return cust.ID, nil
}

// DeleteCustomer removes a Stripe customer.
func (g *StripeGateway) DeleteCustomer(ctx context.Context, customerID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if _, err := customer.Del(customerID, params); err != nil {
		return fmt.Errorf("stripe: delete customer %s: %w", customerID, err)
	}
	return nil
}

// ListActiveSubscriptions returns the IDs of the customer's active subscriptions.
func (g *StripeGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]string, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx

	var ids []string
	iter := subscription.List(params)
	for iter.Next() {
		ids = append(ids, iter.Subscription().ID)
	}
	if err := iter.Err(); err != nil {
		return ids, fmt.Errorf("stripe: list subscriptions for %s: %w", customerID, err)
	}
	return ids, nil
}

// CancelSubscription cancels a subscription immediately.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := subscription.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("stripe: cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

// CreateCheckoutSession creates a subscription-mode checkout for the PPU
// plan. The base subscription itself is free; usage is billed per redeemed
// coupon.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, customerID string, metadata map[string]string) (*core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyPLN)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("PEDRO Pay-per-Use"),
						Description: stripe.String("Płać tylko za wykorzystane kupony"),
					},
					UnitAmount: stripe.Int64(0),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.clientURL + "/billing?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.clientURL + "/billing?canceled=true"),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &core.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession creates a billing-portal session for the customer.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(g.clientURL + "/billing"),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create portal session: %w", err)
	}
	return sess.URL, nil
}

// ConstructEvent verifies the webhook signature against the signing secret
// and maps the Stripe event to the reduced form the synchronizer consumes.
func (g *StripeGateway) ConstructEvent(payload []byte, sigHeader string) (*core.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: construct event: %w", err)
	}

	out := &core.WebhookEvent{
		ID:   event.ID,
		Kind: string(event.Type),
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe: decode subscription event %s: %w", event.ID, err)
		}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		out.SubscriptionID = sub.ID
		out.SubscriptionStatus = string(sub.Status)
		out.PeriodStart, out.PeriodEnd = subscriptionPeriod(&sub)

	case stripe.EventTypeInvoicePaymentSucceeded, stripe.EventTypeInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("stripe: decode invoice event %s: %w", event.ID, err)
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
		out.InvoiceID = inv.ID
		out.Amount = inv.AmountPaid
		if event.Type == stripe.EventTypeInvoicePaymentFailed {
			// Nothing was paid; record what the attempt was for.
			out.Amount = inv.AmountDue
		}
		out.Currency = string(inv.Currency)
	}

	return out, nil
}

// subscriptionPeriod reads the current billing period off the first
// subscription item; recent Stripe API versions keep the period there
// rather than on the subscription itself.
func subscriptionPeriod(sub *stripe.Subscription) (*time.Time, *time.Time) {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, nil
	}
	item := sub.Items.Data[0]
	var start, end *time.Time
	if item.CurrentPeriodStart > 0 {
		t := time.Unix(item.CurrentPeriodStart, 0).UTC()
		start = &t
	}
	if item.CurrentPeriodEnd > 0 {
		t := time.Unix(item.CurrentPeriodEnd, 0).UTC()
		end = &t
	}
	return start, end
}
