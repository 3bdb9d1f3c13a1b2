package models

import "fmt"

// PaymentMethod is the fixed set of checkout payment options. Cash on
// delivery confirms immediately; the e-wallet methods redirect to the
// payment provider.
type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentGCash   PaymentMethod = "gcash"
	PaymentPayMaya PaymentMethod = "paymaya"
	PaymentGrabPay PaymentMethod = "grab_pay"
)

// ParsePaymentMethod validates a raw payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCOD, PaymentGCash, PaymentPayMaya, PaymentGrabPay:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q (accepted: cod, gcash, paymaya, grab_pay)", s)
}

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	_, err := ParsePaymentMethod(string(m))
	return err == nil
}
