// Package validate holds the stateless input checks consumed by every mutation path.
package validate

import (
	"math"
	"strings"

	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
)

// PhoneDigits is the required number of decimal digits in a phone number.
const PhoneDigits = 8

// MemberData checks the primitive member inputs.
// PRE: none
// POST: Returns nil, or an ErrInvalidInput error naming the first failing check
// INVARIANT: checks run in the order name, age, membershipType, email, phone
func MemberData(name string, age int, membershipType string, email string, phone int) error {
	if strings.TrimSpace(name) == "" {
		return failure.InvalidInput("name cannot be empty")
	}
	if age < member.MinAge || age > member.MaxAge {
		return failure.InvalidInput("age must be between %d and %d, got %d", member.MinAge, member.MaxAge, age)
	}
	if _, err := member.ParseMembershipType(membershipType); err != nil {
		return failure.InvalidInput("%v, got %q", err, membershipType)
	}
	if !strings.Contains(email, "@") {
		return failure.InvalidInput("email must contain '@', got %q", email)
	}
	if digits(phone) != PhoneDigits {
		return failure.InvalidInput("phone number must have exactly %d digits, got %d", PhoneDigits, phone)
	}
	return nil
}

// Payment checks a payment amount and status.
// POST: Returns nil, or an ErrInvalidInput error
func Payment(amount float64, status member.PaymentStatus) error {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return failure.InvalidInput("payment amount must be a positive finite number, got %v", amount)
	}
	if _, err := member.ParsePaymentStatus(string(status)); err != nil {
		return failure.InvalidInput("%v", err)
	}
	return nil
}

// Rate checks a yearly fee rate.
func Rate(rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return failure.InvalidInput("rate must be a positive finite number, got %v", rate)
	}
	return nil
}

// Reminder checks reminder text. Reminders are stored one per line.
func Reminder(text string) error {
	if strings.TrimSpace(text) == "" {
		return failure.InvalidInput("reminder cannot be empty")
	}
	if strings.ContainsAny(text, "\r\n") {
		return failure.InvalidInput("reminder must be a single line")
	}
	return nil
}

// RecordField checks that a text field can be stored in a delimited line record.
func RecordField(field, value, delimiter string) error {
	if delimiter != "" && strings.Contains(value, delimiter) {
		return failure.InvalidInput("%s cannot contain %q", field, delimiter)
	}
	if strings.ContainsAny(value, "\r\n") {
		return failure.InvalidInput("%s must be a single line", field)
	}
	return nil
}

// digits returns the decimal digit count of a non-negative value, or 0 for negatives.
func digits(n int) int {
	if n < 0 {
		return 0
	}
	count := 1
	for n >= 10 {
		n /= 10
		count++
	}
	return count
}
