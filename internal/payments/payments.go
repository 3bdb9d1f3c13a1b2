// Package payments dispatches a checkout total to the flow its payment
// method requires: cash on delivery confirms immediately, the e-wallet
// methods go through a PayMongo source and redirect the customer.
package payments

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// ErrNotConfigured is returned when an e-wallet method is requested but
// no provider key is configured.
var ErrNotConfigured = errors.New("payment provider not configured")

// Flow is the result of initiating a payment. It is a closed set:
// exactly one concrete type per kind of downstream flow, so a new
// payment method cannot be added without deciding its flow here.
type Flow interface {
	flow()
}

// ImmediateConfirmation means no provider is involved; the order is
// simply confirmed (cash on delivery).
type ImmediateConfirmation struct{}

func (ImmediateConfirmation) flow() {}

// ProviderRedirect carries the URL the customer must be sent to in order
// to authorize the payment with the provider.
type ProviderRedirect struct {
	SourceID    string
	CheckoutURL string
}

func (ProviderRedirect) flow() {}

// Status reports whether the provider integration is usable.
type Status struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

type ServiceInterface interface {
	Initiate(method models.PaymentMethod, amount decimal.Decimal, description string) (Flow, error)
	Status() Status
}

// Service routes payment initiation by method. The provider client may
// be nil when no key is configured; cash on delivery still works then.
type Service struct {
	provider *PayMongoClient
	logger   *logger.Logger
}

func NewService(provider *PayMongoClient, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   log.WithComponent("payments"),
	}
}

// Initiate starts the flow for one payment method. The switch is
// exhaustive over the known methods; an unknown method is a programming
// error upstream (checkout validates the enum first).
func (s *Service) Initiate(method models.PaymentMethod, amount decimal.Decimal, description string) (Flow, error) {
	switch method {
	case models.PaymentCOD:
		s.logger.Debug("Cash on delivery, no provider flow", "amount", amount)
		return ImmediateConfirmation{}, nil

	case models.PaymentGCash, models.PaymentPayMaya, models.PaymentGrabPay:
		if s.provider == nil {
			s.logger.Warn("E-wallet payment requested without provider configured", "method", method)
			return nil, ErrNotConfigured
		}
		source, err := s.provider.CreateSource(string(method), amount, description)
		if err != nil {
			s.logger.Error("Failed to create payment source", "method", method, "error", err)
			return nil, err
		}
		s.logger.Info("Created payment source", "method", method, "source_id", source.ID)
		return ProviderRedirect{SourceID: source.ID, CheckoutURL: source.CheckoutURL}, nil

	default:
		return nil, fmt.Errorf("no payment flow for method %q", method)
	}
}

// Status checks whether the provider is configured and reachable.
func (s *Service) Status() Status {
	if s.provider == nil {
		return Status{Enabled: false, Message: "payment provider not configured"}
	}
	if err := s.provider.Ping(); err != nil {
		s.logger.Warn("Payment provider unreachable", "error", err)
		return Status{Enabled: false, Message: "payment provider key not verified"}
	}
	return Status{Enabled: true, Message: "payment provider connected and verified"}
}
