package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
	"github.com/ridehq/club-manager-api/models"
)

// Subscription exported for testing purposes
type Subscription struct {
	DB  databases.SubscriptionDatabase
	CDB databases.ClubDatabase
}

// StatusHandler returns the club's subscription projected against the clock:
// days until expiry, the expiring-soon flag, and an active status downgraded
// to expired once the period end has passed
func (s Subscription) StatusHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	sub, err := s.DB.FindOne(r.Context(), bson.M{"clubId": clubID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		// clubs created before billing went live have no subscription doc
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(models.SubscriptionStatus{Status: models.SubscriptionIncomplete})
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get subscription", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(sub.Project(time.Now()))
}

type checkoutSessionRequest struct {
	PriceID    string `json:"priceId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// CreateCheckoutSessionHandler starts a stripe checkout for a club plan. The
// club id rides along in the session metadata so verification can find it.
func (s Subscription) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req checkoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.PriceID == "" {
		config.ErrorStatus("priceId is required", http.StatusBadRequest, w, nil)
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if req.SuccessURL == "" {
		req.SuccessURL = fmt.Sprintf("%s/billing/success?session_id={CHECKOUT_SESSION_ID}", baseURL)
	}
	if req.CancelURL == "" {
		req.CancelURL = fmt.Sprintf("%s/billing/cancelled", baseURL)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.AddMetadata("clubId", clubID)

	sess, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusBadGateway, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"sessionId": sess.ID, "url": sess.URL})
}

type verifySessionRequest struct {
	SessionID string `json:"sessionId"`
}

// VerifyCheckoutSessionHandler confirms a completed checkout with stripe and
// upserts the club's subscription document from the live subscription state
func (s Subscription) VerifyCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	var req verifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.SessionID == "" {
		config.ErrorStatus("sessionId is required", http.StatusBadRequest, w, nil)
		return
	}

	sess, err := session.Get(req.SessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Expand: []*string{stripe.String("subscription"), stripe.String("subscription.items")}},
	})
	if err != nil {
		config.ErrorStatus("failed to fetch checkout session", http.StatusBadGateway, w, err)
		return
	}
	if sess.Metadata["clubId"] != clubID {
		config.ErrorStatus("checkout session does not belong to this club", http.StatusForbidden, w, nil)
		return
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid || sess.Subscription == nil {
		config.ErrorStatus("checkout session is not paid", http.StatusPaymentRequired, w, nil)
		return
	}

	stripeSub := sess.Subscription
	periodEnd := time.Time{}
	plan := ""
	if len(stripeSub.Items.Data) > 0 {
		item := stripeSub.Items.Data[0]
		periodEnd = time.Unix(item.CurrentPeriodEnd, 0)
		if item.Price != nil {
			plan = item.Price.Nickname
			if plan == "" {
				plan = item.Price.ID
			}
		}
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"stripeCustomerId":     sess.Customer.ID,
		"stripeSubscriptionId": stripeSub.ID,
		"plan":                 plan,
		"status":               models.ClassifyStripeStatus(string(stripeSub.Status)),
		"currentPeriodEnd":     periodEnd,
		"updatedAt":            now,
	}, "$setOnInsert": bson.M{
		"clubId":    clubID,
		"createdAt": now,
	}}

	if _, err := s.DB.UpdateOne(r.Context(), bson.M{"clubId": clubID}, update, options.Update().SetUpsert(true)); err != nil {
		config.ErrorStatus("failed to save subscription", http.StatusInternalServerError, w, err)
		return
	}

	// keep the stripe customer on the club for the billing portal
	if cID, err := primitive.ObjectIDFromHex(clubID); err == nil {
		if _, err := s.CDB.UpdateOne(r.Context(), bson.M{"_id": cID}, bson.M{"$set": bson.M{"stripeCustomerId": sess.Customer.ID}}); err != nil {
			zap.S().Warnw("failed to store stripe customer on club", "clubId", clubID, "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": models.ClassifyStripeStatus(string(stripeSub.Status))})
}

// CustomerPortalHandler opens a stripe billing portal session for the club's
// customer so admins can manage payment methods and cancellation
func (s Subscription) CustomerPortalHandler(w http.ResponseWriter, r *http.Request) {
	clubID := mux.Vars(r)["club_id"]

	sub, err := s.DB.FindOne(r.Context(), bson.M{"clubId": clubID})
	if err != nil {
		config.ErrorStatus("club has no subscription", http.StatusNotFound, w, err)
		return
	}
	if sub.StripeCustomerID == "" {
		config.ErrorStatus("club has no stripe customer", http.StatusNotFound, w, nil)
		return
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.StripeCustomerID),
		ReturnURL: stripe.String(fmt.Sprintf("%s/billing", os.Getenv("BASE_URL"))),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		config.ErrorStatus("failed to create portal session", http.StatusBadGateway, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"url": sess.URL})
}
