package payment

import (
	"errors"
	"time"

	"swimclub/internal/domain/member"
)

// DateLayout is the calendar date format used for payment dates.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrNilMember = errors.New("payment must reference a member")
	ErrZeroDate  = errors.New("payment date is required")
)

// Payment records a yearly fee payment by a member.
type Payment struct {
	ID         int
	MemberID   int
	MemberName string
	Status     member.PaymentStatus
	Date       time.Time
	Amount     float64
	Reference  string
}

// New constructs a payment for m.
// PRE: m is a tracked member; amount has passed validation
// POST: Returns ErrNilMember or ErrZeroDate for a missing member or date
// Date is truncated to the calendar day.
func New(id int, m *member.Member, status member.PaymentStatus, date time.Time, amount float64, reference string) (Payment, error) {
	if m == nil {
		return Payment{}, ErrNilMember
	}
	if date.IsZero() {
		return Payment{}, ErrZeroDate
	}
	return Payment{
		ID:         id,
		MemberID:   m.ID,
		MemberName: m.Name,
		Status:     status,
		Date:       calendarDay(date),
		Amount:     amount,
		Reference:  reference,
	}, nil
}

// SetStatus corrects the recorded status.
func (p *Payment) SetStatus(s member.PaymentStatus) {
	p.Status = s
}

// SetDate corrects the recorded date.
// PRE: date is non-zero
func (p *Payment) SetDate(date time.Time) error {
	if date.IsZero() {
		return ErrZeroDate
	}
	p.Date = calendarDay(date)
	return nil
}

// SetAmount corrects the recorded amount.
// PRE: amount has passed validation
func (p *Payment) SetAmount(amount float64) {
	p.Amount = amount
}

// IsComplete returns true if the payment settled.
func (p Payment) IsComplete() bool {
	return p.Status == member.PaymentComplete
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
