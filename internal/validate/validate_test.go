package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shipway/shipway/internal/validate"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"org@example.com", true},
		{"first.last@sub.example.co", true},
		{"not-an-email", false},
		{"missing@tld@double.com", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			assert.Equal(t, tc.valid, validate.Email(tc.email))
		})
	}
}

func TestMobilePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"01012345678", true},
		{"01112345678", true},
		{"01212345678", true},
		{"01512345678", true},
		{"+201012345678", true},
		{"201012345678", true},
		{"1012345678", true},
		{"01312345678", false}, // 013 is not a mobile prefix
		{"0101234567", false},  // too short
		{"010123456789", false},
		{"02123456789", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.phone, func(t *testing.T) {
			assert.Equal(t, tc.valid, validate.MobilePhone(tc.phone))
		})
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"strong", "Str0ng!Pass1", true},
		{"too short", "abc", false},
		{"no uppercase", "str0ng!pass1", false},
		{"no lowercase", "STR0NG!PASS1", false},
		{"no digit", "Strong!Passw", false},
		{"no symbol", "Str0ngPass12", false},
		{"exactly ten", "Aa1!aaaaaa", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, validate.StrongPassword(tc.password))
		})
	}
}

func TestOrderFields(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		phone   string
		qty     int
		amount  float64
		payment string
		row     int
		wantErr string
	}{
		{
			name:  "valid with email",
			email: "r@example.com", phone: "01012345678", qty: 2, amount: 99.5, payment: "COD",
		},
		{
			name:  "valid without email",
			email: "", phone: "01012345678", qty: 1, amount: 10, payment: "Card",
		},
		{
			name:  "bad email",
			email: "nope", phone: "01012345678", qty: 1, amount: 10, payment: "COD",
			wantErr: "Incorrect email format",
		},
		{
			name:  "bad phone in row",
			email: "", phone: "12345", qty: 1, amount: 10, payment: "COD", row: 3,
			wantErr: "Invalid phone number format in row 3",
		},
		{
			name:  "zero quantity",
			email: "", phone: "01012345678", qty: 0, amount: 10, payment: "COD",
			wantErr: "Invalid quantity",
		},
		{
			name:  "negative amount in row",
			email: "", phone: "01012345678", qty: 1, amount: -5, payment: "COD", row: 2,
			wantErr: "Invalid total amount. Total amount must be a positive number in row 2",
		},
		{
			name:  "unknown payment method",
			email: "", phone: "01012345678", qty: 1, amount: 10, payment: "PayPal",
			wantErr: "Invalid payment method",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.OrderFields(tc.email, tc.phone, tc.qty, tc.amount, tc.payment, tc.row)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)

			var fieldErr *validate.FieldError
			assert.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.row, fieldErr.Row)
		})
	}
}
