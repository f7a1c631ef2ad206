package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	checkoutErrors "github.com/sebuszqo/BarberCheckout/internal/checkout/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultPaymentDelay = 2 * time.Second
	completionTimeout   = 10 * time.Second
	statusProcessing    = "processing"
)

// Scheduler runs f once after d. The simulated payment uses it as a fire-and-forget timer.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type ReceiptSender interface {
	QueueReceipt(to string, receipt domain.Receipt)
}

type Options struct {
	Catalog      *domain.PaymentCatalog
	View         ViewOptions
	PaymentDelay time.Duration
	Now          func() time.Time
	Scheduler    Scheduler
	Receipts     ReceiptSender
	Logger       logrus.FieldLogger
}

type SubmitRequest struct {
	Email string `json:"email"`
}

type PaymentTicket struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Total     string `json:"total"`
}

// Checkout owns one session's cart, payment form and selected method, and derives
// whether the order can be submitted.
type Checkout struct {
	mu           sync.Mutex
	sessionID    string
	cart         *CartStore
	form         domain.PaymentForm
	method       domain.PaymentMethod
	processing   bool
	receipt      *domain.Receipt
	lastActivity time.Time
	retired      bool

	opts   Options
	log    logrus.FieldLogger
	tracer trace.Tracer
}

func NewCheckout(ctx context.Context, sessionID string, repo domain.CartRepository, opts Options) (*Checkout, error) {
	if opts.Catalog == nil {
		catalog, err := domain.NewPaymentCatalog(domain.DefaultPaymentMethods())
		if err != nil {
			return nil, err
		}
		opts.Catalog = catalog
	}
	if opts.PaymentDelay <= 0 {
		opts.PaymentDelay = DefaultPaymentDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	opts.View = opts.View.withDefaults()

	cart, err := LoadCartStore(ctx, repo, sessionID)
	if err != nil {
		return nil, err
	}

	return &Checkout{
		sessionID:    sessionID,
		cart:         cart,
		method:       opts.Catalog.Default(),
		lastActivity: opts.Now(),
		opts:         opts,
		log:          opts.Logger.WithField("session_id", sessionID),
		tracer:       otel.Tracer("checkout"),
	}, nil
}

func (c *Checkout) SessionID() string {
	return c.sessionID
}

func (c *Checkout) View() CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Checkout) CartView() CartView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RenderCart(c.cart.Cart(), c.opts.View)
}

func (c *Checkout) Methods() []domain.PaymentMethod {
	return c.opts.Catalog.Methods()
}

func (c *Checkout) AddItem(ctx context.Context, item domain.CartItem) (CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return CartView{}, checkoutErrors.ErrSessionExpired
	}

	if err := c.cart.AddItem(ctx, item); err != nil {
		return CartView{}, err
	}
	c.log.WithFields(logrus.Fields{"item_id": item.ID, "quantity": item.Quantity}).Info("Item added to cart")
	return RenderCart(c.cart.Cart(), c.opts.View), nil
}

func (c *Checkout) UpdateQuantity(ctx context.Context, itemID string, delta int) (CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return CartView{}, checkoutErrors.ErrSessionExpired
	}

	if err := c.cart.UpdateQuantity(ctx, itemID, delta); err != nil {
		return CartView{}, err
	}
	return RenderCart(c.cart.Cart(), c.opts.View), nil
}

func (c *Checkout) RemoveItem(ctx context.Context, itemID string, confirmed bool) (CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return CartView{}, checkoutErrors.ErrSessionExpired
	}

	if err := c.cart.RemoveItem(ctx, itemID, confirmed); err != nil {
		return CartView{}, err
	}
	c.log.WithField("item_id", itemID).Info("Item removed from cart")
	return RenderCart(c.cart.Cart(), c.opts.View), nil
}

// SelectPaymentMethod switches between the card form and a wallet's QR code.
// Field values typed so far are kept.
func (c *Checkout) SelectPaymentMethod(methodID string) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return CheckoutView{}, checkoutErrors.ErrSessionExpired
	}

	method, ok := c.opts.Catalog.Find(methodID)
	if !ok {
		return CheckoutView{}, checkoutErrors.ErrUnknownPaymentMethod
	}
	c.method = method
	return c.viewLocked(), nil
}

// UpdateForm normalises the submitted card fields the way the page formats them while typing.
func (c *Checkout) UpdateForm(form domain.PaymentForm) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return CheckoutView{}, checkoutErrors.ErrSessionExpired
	}
	c.form = FormatForm(form)
	return c.viewLocked(), nil
}

func (c *Checkout) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Checkout) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Submit starts the simulated payment. Completion happens after the configured
// delay; it cannot be cancelled.
func (c *Checkout) Submit(ctx context.Context, req SubmitRequest) (PaymentTicket, error) {
	ctx, span := c.tracer.Start(ctx, "checkout.Submit")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retired {
		return PaymentTicket{}, checkoutErrors.ErrSessionExpired
	}
	if c.cart.IsEmpty() {
		return PaymentTicket{}, checkoutErrors.ErrCheckoutBlocked
	}
	if c.processing {
		return PaymentTicket{}, checkoutErrors.ErrPaymentInProgress
	}
	if !c.formValidLocked() {
		return PaymentTicket{}, checkoutErrors.ErrCheckoutBlocked
	}

	// The receipt address is only looked at once the order itself may go through.
	email := strings.TrimSpace(req.Email)
	if email != "" {
		if err := checkmail.ValidateFormat(email); err != nil {
			return PaymentTicket{}, checkoutErrors.ErrInvalidReceiptEmail
		}
	}

	method := c.method
	total := domain.FormatMoney(c.opts.View.CurrencySymbol, c.cart.Subtotal())
	reference := uuid.NewString()

	span.SetAttributes(
		attribute.String("payment.method", method.ID),
		attribute.String("payment.reference", reference),
		attribute.Int("cart.items", c.cart.ItemCount()),
	)
	fields := logrus.Fields{"reference": reference, "method": method.ID, "total": total}
	if !method.IsWallet() {
		brand := DetectCardBrand(c.form.CardNumber)
		span.SetAttributes(attribute.String("credit_card.type", string(brand)))
		fields["card"] = maskCardNumber(c.form.CardNumber)
	}

	c.processing = true
	c.receipt = nil
	c.touchLocked()
	c.log.WithFields(fields).Info("Payment processing started")

	c.opts.Scheduler.AfterFunc(c.opts.PaymentDelay, func() {
		c.complete(reference, method, total, email)
	})

	return PaymentTicket{
		Reference: reference,
		Status:    statusProcessing,
		Method:    method.DisplayName(),
		Total:     total,
	}, nil
}

func (c *Checkout) complete(reference string, method domain.PaymentMethod, total, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "checkout.Complete", trace.WithAttributes(attribute.String("payment.reference", reference)))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.cart.Clear(ctx); err != nil {
		span.RecordError(err)
		c.log.WithError(err).WithField("reference", reference).Error("Failed to clear persisted cart after payment")
	}

	receipt := domain.Receipt{
		Reference:   reference,
		Method:      method.DisplayName(),
		Total:       total,
		Message:     domain.ConfirmationMessage(method.DisplayName(), total),
		Email:       email,
		CompletedAt: c.opts.Now(),
	}
	c.receipt = &receipt
	c.form = domain.PaymentForm{}
	c.method = c.opts.Catalog.Default()
	c.processing = false
	c.touchLocked()

	if email != "" && c.opts.Receipts != nil {
		c.opts.Receipts.QueueReceipt(email, receipt)
	}
	c.log.WithFields(logrus.Fields{"reference": reference, "method": method.ID, "total": total}).Info("Payment completed")
}

func (c *Checkout) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Checkout) touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
}

// retireIfIdle marks the checkout as no longer served by the registry. A checkout
// with a payment in flight or activity at or after cutoff is left alone.
func (c *Checkout) retireIfIdle(cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing || !c.lastActivity.Before(cutoff) {
		return false
	}
	c.retired = true
	return true
}

func (c *Checkout) Retired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retired
}

func (c *Checkout) touchLocked() {
	c.lastActivity = c.opts.Now()
}

// formValidLocked evaluates the branch of the selected method: card fields for
// cards, catalog membership for wallets.
func (c *Checkout) formValidLocked() bool {
	if c.method.IsWallet() {
		method, ok := c.opts.Catalog.Find(c.method.ID)
		return ok && method.IsWallet()
	}
	return ValidateCardForm(c.form, c.opts.Now()).Valid
}

func (c *Checkout) canSubmitLocked() bool {
	return !c.cart.IsEmpty() && !c.processing && c.formValidLocked()
}

func (c *Checkout) viewLocked() CheckoutView {
	validation := ValidateCardForm(c.form, c.opts.Now())
	form := RenderForm(c.form, validation)
	form.Valid = c.formValidLocked()

	var confirmation *domain.Receipt
	if c.receipt != nil {
		receipt := *c.receipt
		confirmation = &receipt
	}

	return CheckoutView{
		Cart:         RenderCart(c.cart.Cart(), c.opts.View),
		Payment:      RenderPayment(c.opts.Catalog, c.method),
		Form:         form,
		Checkout:     RenderButton(c.canSubmitLocked(), c.processing),
		Confirmation: confirmation,
	}
}
