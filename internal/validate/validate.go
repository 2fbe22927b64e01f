package validate

import (
	"fmt"
	"math"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/shipway/shipway/internal/repository"
)

var (
	v = validator.New()

	// Egyptian mobile numbers: optional +20/20/0 prefix, then 1[0125] and
	// eight digits.
	mobileRe = regexp.MustCompile(`^((\+?20)|0)?1[0125][0-9]{8}$`)
)

// FieldError reports which field failed and, for bulk imports, the 1-based
// row it failed in. It is a client error, never an internal one.
type FieldError struct {
	Field  string
	Row    int
	Reason string
}

func (e *FieldError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s in row %d", e.Reason, e.Row)
	}
	return e.Reason
}

func Email(email string) bool {
	return v.Var(email, "required,email") == nil
}

func MobilePhone(phone string) bool {
	return mobileRe.MatchString(phone)
}

// StrongPassword requires at least 10 characters with one lowercase, one
// uppercase, one digit and one symbol.
func StrongPassword(password string) bool {
	if len(password) < 10 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// OrderFields checks one order's candidate fields. row is the 1-based row
// index inside a bulk batch, or 0 when validating a single order. The
// recipient email is optional: empty passes, anything else must be valid.
func OrderFields(email, phone string, quantity int, amount float64, payment string, row int) error {
	if email != "" && !Email(email) {
		return &FieldError{Field: "recipientEmail", Row: row, Reason: "Incorrect email format"}
	}
	if !MobilePhone(phone) {
		return &FieldError{Field: "recipientPhone", Row: row, Reason: "Invalid phone number format"}
	}
	if quantity <= 0 {
		return &FieldError{Field: "quantity", Row: row, Reason: "Invalid quantity. Quantity must be a positive integer"}
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &FieldError{Field: "totalAmount", Row: row, Reason: "Invalid total amount. Total amount must be a positive number"}
	}
	if payment != repository.PaymentCOD && payment != repository.PaymentCard {
		return &FieldError{Field: "paymentMethod", Row: row, Reason: fmt.Sprintf("Invalid payment method. Allowed values: %s, %s", repository.PaymentCOD, repository.PaymentCard)}
	}
	return nil
}
