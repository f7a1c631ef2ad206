package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
)

var (
	whitespacePattern = regexp.MustCompile(`\s`)
	digitsPattern     = regexp.MustCompile(`^\d+$`)
	nonDigitPattern   = regexp.MustCompile(`\D`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cardGroupPattern  = regexp.MustCompile(`(.{4})`)
	nameRejectPattern = regexp.MustCompile(`[^a-zA-ZÀ-ÿ\s]`)
)

const (
	minCardNumberLength = 13
	maxCardNumberLength = 19
	minCVVLength        = 3
	maxCVVLength        = 4
	minNameLength       = 2
)

func ValidateCardNumber(number string) bool {
	cleaned := whitespacePattern.ReplaceAllString(number, "")
	return len(cleaned) >= minCardNumberLength && len(cleaned) <= maxCardNumberLength && digitsPattern.MatchString(cleaned)
}

// ValidateExpiry accepts MM/YY cards expiring in the current month or later.
func ValidateExpiry(expiry string, now time.Time) bool {
	if !expiryPattern.MatchString(expiry) {
		return false
	}

	parts := strings.SplitN(expiry, "/", 2)
	cardMonth, _ := strconv.Atoi(parts[0])
	cardYear, _ := strconv.Atoi(parts[1])
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if cardYear < currentYear {
		return false
	}
	if cardYear == currentYear && cardMonth < currentMonth {
		return false
	}
	return true
}

func ValidateCVV(cvv string) bool {
	return len(cvv) >= minCVVLength && len(cvv) <= maxCVVLength && digitsPattern.MatchString(cvv)
}

func ValidateName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= minNameLength
}

type FormValidation struct {
	Fields map[domain.FieldName]bool
	Valid  bool
}

func ValidateCardForm(form domain.PaymentForm, now time.Time) FormValidation {
	fields := map[domain.FieldName]bool{
		domain.FieldCardNumber: ValidateCardNumber(form.CardNumber),
		domain.FieldCardExpiry: ValidateExpiry(form.Expiry, now),
		domain.FieldCardCVV:    ValidateCVV(form.CVV),
		domain.FieldCardName:   ValidateName(form.Name),
	}
	valid := true
	for _, ok := range fields {
		valid = valid && ok
	}
	return FormValidation{Fields: fields, Valid: valid}
}

// FieldStateFor leaves untouched (blank) fields unmarked.
func FieldStateFor(value string, valid bool) domain.FieldState {
	if strings.TrimSpace(value) == "" {
		return domain.FieldStateNone
	}
	if valid {
		return domain.FieldStateValid
	}
	return domain.FieldStateError
}

// FormatCardNumber groups the number in blocks of four, e.g. "4111 1111 1111 1111".
func FormatCardNumber(value string) string {
	cleaned := whitespacePattern.ReplaceAllString(value, "")
	return strings.TrimSpace(cardGroupPattern.ReplaceAllString(cleaned, "$1 "))
}

// FormatExpiry keeps digits and inserts the month separator once two digits are typed.
func FormatExpiry(value string) string {
	digits := nonDigitPattern.ReplaceAllString(value, "")
	if len(digits) < 2 {
		return digits
	}
	year := digits[2:]
	if len(year) > 2 {
		year = year[:2]
	}
	return digits[:2] + "/" + year
}

func FormatCVV(value string) string {
	return nonDigitPattern.ReplaceAllString(value, "")
}

func FormatName(value string) string {
	return nameRejectPattern.ReplaceAllString(value, "")
}

// FormatForm applies the same normalisation the page does while the shopper types.
func FormatForm(form domain.PaymentForm) domain.PaymentForm {
	return domain.PaymentForm{
		CardNumber: FormatCardNumber(form.CardNumber),
		Expiry:     FormatExpiry(form.Expiry),
		CVV:        FormatCVV(form.CVV),
		Name:       FormatName(form.Name),
	}
}

type CardBrand string

const (
	CardBrandUnknown    CardBrand = ""
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandAmex       CardBrand = "amex"
)

func DetectCardBrand(number string) CardBrand {
	cleaned := whitespacePattern.ReplaceAllString(number, "")
	switch {
	case strings.HasPrefix(cleaned, "4"):
		return CardBrandVisa
	case strings.HasPrefix(cleaned, "5"), strings.HasPrefix(cleaned, "2"):
		return CardBrandMastercard
	case strings.HasPrefix(cleaned, "3"):
		return CardBrandAmex
	}
	return CardBrandUnknown
}

func maskCardNumber(number string) string {
	cleaned := whitespacePattern.ReplaceAllString(number, "")
	if len(cleaned) < 4 {
		return "****"
	}
	return "****" + cleaned[len(cleaned)-4:]
}
