package application

import (
	"net/url"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
)

const (
	defaultItemsPath           = "/api/cart/items"
	defaultContinueShoppingURL = "/productos"

	emptyCartTitle   = "Your cart is empty"
	emptyCartMessage = "Add some great products to get started"
	continueLabel    = "Continue Shopping"

	checkoutLabel   = "Proceed to Payment"
	processingLabel = "Processing..."
)

type ViewOptions struct {
	CurrencySymbol      string
	ContinueShoppingURL string
	ItemsPath           string
}

func (o ViewOptions) withDefaults() ViewOptions {
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = domain.DefaultCurrencySymbol
	}
	if o.ContinueShoppingURL == "" {
		o.ContinueShoppingURL = defaultContinueShoppingURL
	}
	if o.ItemsPath == "" {
		o.ItemsPath = defaultItemsPath
	}
	return o
}

// ActionView describes the request a control issues; the page binds it instead of inline handlers.
type ActionView struct {
	Name   string         `json:"name"`
	Method string         `json:"method"`
	Href   string         `json:"href"`
	Body   map[string]any `json:"body,omitempty"`
}

type CartItemView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Image     string       `json:"image"`
	UnitPrice string       `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	LineTotal string       `json:"line_total"`
	Actions   []ActionView `json:"actions"`
}

type EmptyCartView struct {
	Title         string `json:"title"`
	Message       string `json:"message"`
	ContinueLabel string `json:"continue_label"`
	ContinueHref  string `json:"continue_href"`
}

type SummaryView struct {
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
}

type BadgeView struct {
	Count  int  `json:"count"`
	Hidden bool `json:"hidden"`
}

type CartView struct {
	Items   []CartItemView `json:"items"`
	Empty   *EmptyCartView `json:"empty,omitempty"`
	Summary SummaryView    `json:"summary"`
	Badge   BadgeView      `json:"badge"`
}

type FieldView struct {
	Value string            `json:"value"`
	State domain.FieldState `json:"state"`
}

type FormView struct {
	Fields    map[domain.FieldName]FieldView `json:"fields"`
	CardBrand CardBrand                      `json:"card_brand"`
	Valid     bool                           `json:"valid"`
}

type PaymentMethodView struct {
	domain.PaymentMethod
	Selected bool `json:"selected"`
}

type QRView struct {
	MethodID string `json:"method_id"`
	Image    string `json:"image"`
}

type PaymentView struct {
	Methods      []PaymentMethodView `json:"methods"`
	Selected     string              `json:"selected"`
	ShowCardForm bool                `json:"show_card_form"`
	QR           *QRView             `json:"qr,omitempty"`
}

type ButtonView struct {
	Enabled    bool   `json:"enabled"`
	Label      string `json:"label"`
	Processing bool   `json:"processing"`
}

type CheckoutView struct {
	Cart         CartView        `json:"cart"`
	Payment      PaymentView     `json:"payment"`
	Form         FormView        `json:"form"`
	Checkout     ButtonView      `json:"checkout"`
	Confirmation *domain.Receipt `json:"confirmation,omitempty"`
}

func RenderCart(cart domain.Cart, opts ViewOptions) CartView {
	opts = opts.withDefaults()
	view := CartView{
		Items: []CartItemView{},
		Summary: SummaryView{
			Subtotal: domain.FormatMoney(opts.CurrencySymbol, cart.Subtotal()),
			Total:    domain.FormatMoney(opts.CurrencySymbol, cart.Total()),
		},
		Badge: RenderBadge(cart),
	}

	if cart.IsEmpty() {
		view.Empty = &EmptyCartView{
			Title:         emptyCartTitle,
			Message:       emptyCartMessage,
			ContinueLabel: continueLabel,
			ContinueHref:  opts.ContinueShoppingURL,
		}
		return view
	}

	for _, item := range cart.Items() {
		href := opts.ItemsPath + "/" + url.PathEscape(item.ID)
		view.Items = append(view.Items, CartItemView{
			ID:        item.ID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: domain.FormatMoney(opts.CurrencySymbol, item.UnitPrice()),
			Quantity:  item.Quantity,
			LineTotal: domain.FormatMoney(opts.CurrencySymbol, item.LineTotal()),
			Actions: []ActionView{
				{Name: "decrease", Method: "PATCH", Href: href, Body: map[string]any{"delta": -1}},
				{Name: "increase", Method: "PATCH", Href: href, Body: map[string]any{"delta": 1}},
				{Name: "remove", Method: "DELETE", Href: href + "?confirm=true"},
			},
		})
	}
	return view
}

func RenderBadge(cart domain.Cart) BadgeView {
	count := cart.ItemCount()
	return BadgeView{Count: count, Hidden: count == 0}
}

func RenderForm(form domain.PaymentForm, validation FormValidation) FormView {
	fields := make(map[domain.FieldName]FieldView, len(domain.CardFields))
	for _, field := range domain.CardFields {
		value := form.Value(field)
		fields[field] = FieldView{Value: value, State: FieldStateFor(value, validation.Fields[field])}
	}
	return FormView{
		Fields:    fields,
		CardBrand: DetectCardBrand(form.CardNumber),
		Valid:     validation.Valid,
	}
}

func RenderPayment(catalog *domain.PaymentCatalog, selected domain.PaymentMethod) PaymentView {
	view := PaymentView{
		Selected:     selected.ID,
		ShowCardForm: !selected.IsWallet(),
	}
	for _, method := range catalog.Methods() {
		view.Methods = append(view.Methods, PaymentMethodView{PaymentMethod: method, Selected: method.ID == selected.ID})
	}
	if selected.IsWallet() {
		view.QR = &QRView{MethodID: selected.ID, Image: selected.QRImage}
	}
	return view
}

func RenderButton(enabled, processing bool) ButtonView {
	label := checkoutLabel
	if processing {
		label = processingLabel
	}
	return ButtonView{Enabled: enabled && !processing, Label: label, Processing: processing}
}
