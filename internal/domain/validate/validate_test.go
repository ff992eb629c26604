package validate_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
	"swimclub/internal/domain/validate"
)

var typeStrings = []string{"COMPETITIVE_JUNIOR", "COMPETITIVE_SENIOR", "EXERCISE_JUNIOR", "EXERCISE_SENIOR"}

// TestMemberDataRules tests that each rule fails on its own and reports its reason.
func TestMemberDataRules(t *testing.T) {
	tests := []struct {
		name       string
		inName     string
		age        int
		mType      string
		email      string
		phone      int
		wantReason string
	}{
		{"valid", "Anna", 30, "EXERCISE_SENIOR", "anna@club.dk", 12345678, ""},
		{"valid bounds", "Bo", 0, "COMPETITIVE_JUNIOR", "bo@club.dk", 10000000, ""},
		{"valid upper bounds", "Bo", 120, "competitive_junior", "bo@club.dk", 99999999, ""},
		{"blank name", "   ", 30, "EXERCISE_SENIOR", "anna@club.dk", 12345678, "name"},
		{"negative age", "Anna", -1, "EXERCISE_SENIOR", "anna@club.dk", 12345678, "age"},
		{"age too high", "Anna", 121, "EXERCISE_SENIOR", "anna@club.dk", 12345678, "age"},
		{"unknown type", "Anna", 30, "GOLD", "anna@club.dk", 12345678, "membership type"},
		{"email without at", "Anna", 30, "EXERCISE_SENIOR", "anna.club.dk", 12345678, "email"},
		{"short phone", "Anna", 30, "EXERCISE_SENIOR", "anna@club.dk", 1234567, "phone"},
		{"long phone", "Anna", 30, "EXERCISE_SENIOR", "anna@club.dk", 123456789, "phone"},
		{"negative phone", "Anna", 30, "EXERCISE_SENIOR", "anna@club.dk", -12345678, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.MemberData(tt.inName, tt.age, tt.mType, tt.email, tt.phone)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("MemberData() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, failure.ErrInvalidInput) {
				t.Fatalf("MemberData() error = %v, want ErrInvalidInput", err)
			}
			if !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("MemberData() error = %q, want mention of %q", err, tt.wantReason)
			}
		})
	}
}

// TestMemberDataCheckOrder tests that only the first failing check surfaces.
// PRE: every input is invalid
// POST: the name error is reported
func TestMemberDataCheckOrder(t *testing.T) {
	err := validate.MemberData("", 500, "GOLD", "nope", 1)
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("MemberData() error = %v, want name error", err)
	}
	err = validate.MemberData("Anna", 500, "GOLD", "nope", 1)
	if err == nil || !strings.Contains(err.Error(), "age") {
		t.Fatalf("MemberData() error = %v, want age error", err)
	}
	err = validate.MemberData("Anna", 50, "GOLD", "nope", 1)
	if err == nil || !strings.Contains(err.Error(), "membership type") {
		t.Fatalf("MemberData() error = %v, want membership type error", err)
	}
}

// TestMemberDataAcceptsAllValid is a property test over the valid input space.
func TestMemberDataAcceptsAllValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[A-Za-zÆØÅæøå]{1,12}( [A-Za-z]{1,12})?`).Draw(t, "name")
		age := rapid.IntRange(member.MinAge, member.MaxAge).Draw(t, "age")
		mType := rapid.SampledFrom(typeStrings).Draw(t, "type")
		email := rapid.StringMatching(`[a-z]{1,8}@[a-z]{1,8}\.dk`).Draw(t, "email")
		phone := rapid.IntRange(10000000, 99999999).Draw(t, "phone")

		if err := validate.MemberData(name, age, mType, email, phone); err != nil {
			t.Fatalf("MemberData(%q, %d, %q, %q, %d) = %v", name, age, mType, email, phone, err)
		}
	})
}

// TestMemberDataRejectsBadPhone is a property test: any phone outside 8 digits is rejected.
func TestMemberDataRejectsBadPhone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		phone := rapid.OneOf(
			rapid.IntRange(-99999999, 9999999),
			rapid.IntRange(100000000, 1<<40),
		).Draw(t, "phone")

		err := validate.MemberData("Anna", 30, "EXERCISE_SENIOR", "anna@club.dk", phone)
		if !errors.Is(err, failure.ErrInvalidInput) || !strings.Contains(err.Error(), "phone") {
			t.Fatalf("phone %d: error = %v, want phone InvalidInput", phone, err)
		}
	})
}

// TestMemberDataRejectsBadAge is a property test: any age outside [0,120] is rejected.
func TestMemberDataRejectsBadAge(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		age := rapid.OneOf(rapid.IntRange(-1000, -1), rapid.IntRange(121, 1000)).Draw(t, "age")

		err := validate.MemberData("Anna", age, "EXERCISE_SENIOR", "anna@club.dk", 12345678)
		if !errors.Is(err, failure.ErrInvalidInput) || !strings.Contains(err.Error(), "age") {
			t.Fatalf("age %d: error = %v, want age InvalidInput", age, err)
		}
	})
}

// TestPayment tests payment amount and status validation.
func TestPayment(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		status  member.PaymentStatus
		wantErr bool
	}{
		{"positive", 1600, member.PaymentComplete, false},
		{"tiny", 0.01, member.PaymentPending, false},
		{"zero", 0, member.PaymentComplete, true},
		{"negative", -10, member.PaymentComplete, true},
		{"not a number", math.NaN(), member.PaymentComplete, true},
		{"positive infinity", math.Inf(1), member.PaymentComplete, true},
		{"negative infinity", math.Inf(-1), member.PaymentComplete, true},
		{"unknown status", 100, "PARTIAL", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Payment(tt.amount, tt.status)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Payment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, failure.ErrInvalidInput) {
				t.Errorf("Payment() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

// TestRateReminderAndRecordField tests the remaining checks.
func TestRateReminderAndRecordField(t *testing.T) {
	if err := validate.Rate(1000); err != nil {
		t.Errorf("Rate(1000) = %v", err)
	}
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := validate.Rate(bad); !errors.Is(err, failure.ErrInvalidInput) {
			t.Errorf("Rate(%v) = %v, want ErrInvalidInput", bad, err)
		}
	}
	if err := validate.Reminder("Reminder for member 3"); err != nil {
		t.Errorf("Reminder() = %v", err)
	}
	if err := validate.Reminder(" "); !errors.Is(err, failure.ErrInvalidInput) {
		t.Errorf("Reminder(blank) = %v, want ErrInvalidInput", err)
	}
	if err := validate.Reminder("two\nlines"); !errors.Is(err, failure.ErrInvalidInput) {
		t.Errorf("Reminder(multi-line) = %v, want ErrInvalidInput", err)
	}
	if err := validate.RecordField("name", "Anna;Bo", ";"); !errors.Is(err, failure.ErrInvalidInput) {
		t.Errorf("RecordField(delimiter) = %v, want ErrInvalidInput", err)
	}
	if err := validate.RecordField("street", "Vestergade 1", ";"); err != nil {
		t.Errorf("RecordField() = %v", err)
	}
}
