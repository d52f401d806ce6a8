package entitlements

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is a purchasable subscription plan.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	PriceAmount int64  `json:"price_amount"` // smallest currency unit
	Currency    string `json:"currency"`
	Period      string `json:"period"` // ISO 8601 duration, P1M or P1Y
	SKUToken    string `json:"-"`
	Tier        Tier   `json:"tier"`
}

// Products is the fixed catalog offered to users.
var Products = []Product{
	{
		ID:          "pro_monthly",
		Title:       "Pro Plan",
		Description: "Unlimited notes, image attachments, voice recordings, and more",
		Price:       "₺20.00",
		PriceAmount: 2000,
		Currency:    "TRY",
		Period:      "P1M",
		SKUToken:    "pro_monthly_subscription",
		Tier:        TierPro,
	},
	{
		ID:          "premium_monthly",
		Title:       "Premium Plan",
		Description: "Everything in Pro plus AI features and team collaboration",
		Price:       "₺30.00",
		PriceAmount: 3000,
		Currency:    "TRY",
		Period:      "P1M",
		SKUToken:    "premium_monthly_subscription",
		Tier:        TierPremium,
	},
}

// FindProduct looks a product up by id.
func FindProduct(id string) (Product, error) {
	for _, p := range Products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// PeriodEnd returns the end of one billing period starting at start.
func (p Product) PeriodEnd(start time.Time) time.Time {
	if p.Period == "P1Y" {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// PurchaseResult is the billing provider's answer to a purchase request.
type PurchaseResult struct {
	Success       bool   `json:"success"`
	PurchaseToken string `json:"purchase_token,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BillingProvider is the external payment processor.
type BillingProvider interface {
	Purchase(ctx context.Context, skuToken string) (PurchaseResult, error)
}

// Confirmer applies a confirmed purchase to a profile.
type Confirmer interface {
	ApplyBillingConfirmation(ctx context.Context, profileID string, tier Tier, periodStart, periodEnd time.Time) error
}

// Purchase is the stored record of a confirmed purchase.
type Purchase struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string        `bson:"user_id" json:"user_id"`
	ProductID     string        `bson:"product_id" json:"product_id"`
	Tier          Tier          `bson:"tier" json:"tier"`
	PurchaseToken string        `bson:"purchase_token" json:"-"`
	Status        string        `bson:"status" json:"status"`
	Platform      string        `bson:"platform" json:"platform"`
	PeriodStart   time.Time     `bson:"period_start" json:"period_start"`
	PeriodEnd     time.Time     `bson:"period_end" json:"period_end"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}

// Purchase statuses. A purchase is pending until its period has been
// applied to the profile.
const (
	PurchaseStatusPending = "pending"
	PurchaseStatusActive  = "active"
)

// PurchasesRepo stores purchase records.
type PurchasesRepo interface {
	Create(ctx context.Context, p *Purchase) error
	SetStatus(ctx context.Context, id bson.ObjectID, status string) error
	ListByUser(ctx context.Context, userID string) ([]*Purchase, error)
}

// BillingService runs the purchase flow: provider call, purchase record,
// then the tier transition.
type BillingService struct {
	provider  BillingProvider
	purchases PurchasesRepo
	confirmer Confirmer
	platform  string
	log       *slog.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(provider BillingProvider, purchases PurchasesRepo, confirmer Confirmer, platform string, log *slog.Logger) *BillingService {
	return &BillingService{
		provider:  provider,
		purchases: purchases,
		confirmer: confirmer,
		platform:  platform,
		log:       log,
	}
}

// Purchase buys productID for profileID. Provider failures come back as
// *BillingError with the provider's message; nothing is written in that case.
// The record is stored as pending and only marked active once the tier
// transition has been applied.
func (s *BillingService) Purchase(ctx context.Context, profileID, productID string, now time.Time) (*Purchase, error) {
	product, err := FindProduct(productID)
	if err != nil {
		return nil, err
	}

	res, err := s.provider.Purchase(ctx, product.SKUToken)
	if err != nil {
		s.log.Warn("billing provider call failed", "error", err, "user_id", profileID, "product_id", productID)
		return nil, &BillingError{Message: err.Error(), Err: err}
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "purchase failed"
		}
		s.log.Info("purchase declined", "user_id", profileID, "product_id", productID, "reason", msg)
		return nil, &BillingError{Message: msg}
	}

	start := now.UTC()
	p := &Purchase{
		ID:            bson.NewObjectID(),
		UserID:        profileID,
		ProductID:     product.ID,
		Tier:          product.Tier,
		PurchaseToken: res.PurchaseToken,
		Status:        PurchaseStatusPending,
		Platform:      s.platform,
		PeriodStart:   start,
		PeriodEnd:     product.PeriodEnd(start),
		CreatedAt:     start,
	}

	if err := s.purchases.Create(ctx, p); err != nil {
		s.log.Error(ErrRecordPurchase.Error(), "error", err, "user_id", profileID, "product_id", productID)
		return nil, errors.Join(ErrRecordPurchase, err)
	}

	if err := s.confirmer.ApplyBillingConfirmation(ctx, profileID, p.Tier, p.PeriodStart, p.PeriodEnd); err != nil {
		s.log.Error("purchase left pending", "error", err, "user_id", profileID, "purchase_id", p.ID.Hex())
		return nil, err
	}

	if err := s.purchases.SetStatus(ctx, p.ID, PurchaseStatusActive); err != nil {
		s.log.Error(ErrRecordPurchase.Error(), "error", err, "user_id", profileID, "purchase_id", p.ID.Hex())
		return nil, errors.Join(ErrRecordPurchase, err)
	}
	p.Status = PurchaseStatusActive

	return p, nil
}

// History lists the purchases of a profile, newest first.
func (s *BillingService) History(ctx context.Context, profileID string) ([]*Purchase, error) {
	return s.purchases.ListByUser(ctx, profileID)
}
