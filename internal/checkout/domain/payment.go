package domain

import (
	"fmt"
	"strings"
	"time"
)

type PaymentKind string

const (
	PaymentKindCard   PaymentKind = "card"
	PaymentKindWallet PaymentKind = "wallet"
)

const cardDisplayName = "Credit/Debit Card"

type PaymentMethod struct {
	ID      string      `json:"id" yaml:"id"`
	Label   string      `json:"label" yaml:"label"`
	Kind    PaymentKind `json:"kind" yaml:"kind"`
	QRImage string      `json:"qr_image,omitempty" yaml:"qr_image"`
}

func (m PaymentMethod) IsWallet() bool {
	return m.Kind == PaymentKindWallet
}

// DisplayName is the method name used in the payment confirmation.
func (m PaymentMethod) DisplayName() string {
	if m.IsWallet() {
		return strings.ToUpper(m.ID)
	}
	return cardDisplayName
}

func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "card", Label: "Credit/Debit Card", Kind: PaymentKindCard},
		{ID: "yape", Label: "Yape", Kind: PaymentKindWallet, QRImage: "/static/img/yape-qr.png"},
		{ID: "plin", Label: "Plin", Kind: PaymentKindWallet, QRImage: "/static/img/plin-qr.png"},
	}
}

type PaymentCatalog struct {
	methods       []PaymentMethod
	byID          map[string]PaymentMethod
	defaultMethod PaymentMethod
}

// NewPaymentCatalog requires unique ids, known kinds and at least one card method.
// The first card method becomes the default selection.
func NewPaymentCatalog(methods []PaymentMethod) (*PaymentCatalog, error) {
	catalog := &PaymentCatalog{byID: make(map[string]PaymentMethod, len(methods))}
	hasCard := false
	for _, method := range methods {
		if method.ID == "" {
			return nil, fmt.Errorf("payment method without id")
		}
		if _, exists := catalog.byID[method.ID]; exists {
			return nil, fmt.Errorf("duplicate payment method %q", method.ID)
		}
		switch method.Kind {
		case PaymentKindCard:
			if !hasCard {
				catalog.defaultMethod = method
				hasCard = true
			}
		case PaymentKindWallet:
		default:
			return nil, fmt.Errorf("payment method %q has unknown kind %q", method.ID, method.Kind)
		}
		catalog.byID[method.ID] = method
		catalog.methods = append(catalog.methods, method)
	}
	if !hasCard {
		return nil, fmt.Errorf("payment catalog needs a card method")
	}
	return catalog, nil
}

func (c *PaymentCatalog) Find(id string) (PaymentMethod, bool) {
	method, ok := c.byID[id]
	return method, ok
}

func (c *PaymentCatalog) Methods() []PaymentMethod {
	methods := make([]PaymentMethod, len(c.methods))
	copy(methods, c.methods)
	return methods
}

func (c *PaymentCatalog) Default() PaymentMethod {
	return c.defaultMethod
}

type FieldName string

const (
	FieldCardNumber FieldName = "card-number"
	FieldCardExpiry FieldName = "card-expiry"
	FieldCardCVV    FieldName = "card-cvv"
	FieldCardName   FieldName = "card-name"
)

var CardFields = []FieldName{FieldCardNumber, FieldCardExpiry, FieldCardCVV, FieldCardName}

// FieldState is the inline marker shown next to a form field.
type FieldState string

const (
	FieldStateNone  FieldState = ""
	FieldStateValid FieldState = "valid"
	FieldStateError FieldState = "error"
)

type PaymentForm struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"card_expiry"`
	CVV        string `json:"card_cvv"`
	Name       string `json:"card_name"`
}

func (f PaymentForm) Value(field FieldName) string {
	switch field {
	case FieldCardNumber:
		return f.CardNumber
	case FieldCardExpiry:
		return f.Expiry
	case FieldCardCVV:
		return f.CVV
	case FieldCardName:
		return f.Name
	}
	return ""
}

type Receipt struct {
	Reference   string    `json:"reference"`
	Method      string    `json:"method"`
	Total       string    `json:"total"`
	Message     string    `json:"message"`
	Email       string    `json:"email,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

func ConfirmationMessage(methodName, total string) string {
	return fmt.Sprintf("Payment completed successfully with %s for a total of %s", methodName, total)
}
