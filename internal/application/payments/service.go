// Package payments computes membership fees and runs the payment lifecycle:
// registration, corrective status changes, reporting and reminders.
package payments

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"swimclub/internal/adapters/email"
	"swimclub/internal/adapters/storage/rates"
	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
	"swimclub/internal/domain/payment"
	"swimclub/internal/domain/validate"
)

// MemberStore is the member collection as seen by the payment flow.
type MemberStore interface {
	FindByID(id int) (member.Member, bool)
	FindAll() []member.Member
	SetPaymentStatus(ctx context.Context, id int, status member.PaymentStatus) error
	SetPaymentStatusWith(ctx context.Context, id int, status member.PaymentStatus, apply func(member.Member) error) error
	SetAllPaymentStatus(ctx context.Context, status member.PaymentStatus) int
}

// PaymentStore is the payment history and reminder bag.
type PaymentStore interface {
	Register(build func(id int) (payment.Payment, error)) (payment.Payment, error)
	Persist(ctx context.Context) error
	FindByMemberID(id int) []payment.Payment
	FindAll() []payment.Payment
	SaveReminder(ctx context.Context, text string) error
	Reminders() []string
	HasReminder(text string) bool
	RemoveReminder(ctx context.Context, text string) bool
	ClearReminders(ctx context.Context) int
}

// RateStore persists the active-member rates.
type RateStore interface {
	Save(ctx context.Context, r rates.Rates) error
}

// Recorder receives payment metrics.
type Recorder interface {
	PaymentRegistered(amount float64)
}

// Fees holds the fixed parts of the fee model.
type Fees struct {
	PassiveFee     float64
	SeniorDiscount float64 // multiplier applied to the senior rate from SeniorAge
	SeniorAge      int
	JuniorAge      int // first age charged the senior rate
}

// DefaultFees is the club's standing fee model.
var DefaultFees = Fees{
	PassiveFee:     500,
	SeniorDiscount: 0.75,
	SeniorAge:      60,
	JuniorAge:      member.JuniorAgeLimit,
}

// DefaultRates are used when no rates have been stored.
var DefaultRates = rates.Rates{Junior: 1000, Senior: 1600}

// Deps holds the collaborators of the Service.
type Deps struct {
	Members  MemberStore
	Payments PaymentStore
	Rates    RateStore
	Sender   email.Sender // nil disables SendReminders
	Metrics  Recorder     // optional
	Now      func() time.Time
	NewRef   func() string
}

// Service is the fee and payment engine.
type Service struct {
	deps  Deps
	fees  Fees
	mu    sync.Mutex
	rates rates.Rates
}

// New creates a service starting from the given rates.
// PRE: deps.Members, deps.Payments and deps.Rates are non-nil; initial rates are positive
// POST: Now and NewRef default to time.Now and a random UUID
func New(deps Deps, fees Fees, initial rates.Rates) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRef == nil {
		deps.NewRef = uuid.NewString
	}
	return &Service{deps: deps, fees: fees, rates: initial}
}

// Rates returns the current rates.
func (s *Service) Rates() rates.Rates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rates
}

// SetJuniorRate replaces the junior rate and persists both rates.
// POST: A non-positive rate is an ErrInvalidInput error and nothing changes;
// a failed write keeps the new rate in memory and is returned as ErrIOFailure
func (s *Service) SetJuniorRate(ctx context.Context, rate float64) error {
	return s.setRate(ctx, rate, func(r *rates.Rates) { r.Junior = rate })
}

// SetSeniorRate replaces the senior rate and persists both rates.
// POST: as SetJuniorRate
func (s *Service) SetSeniorRate(ctx context.Context, rate float64) error {
	return s.setRate(ctx, rate, func(r *rates.Rates) { r.Senior = rate })
}

func (s *Service) setRate(ctx context.Context, rate float64, apply func(*rates.Rates)) error {
	if err := validate.Rate(rate); err != nil {
		return err
	}
	s.mu.Lock()
	apply(&s.rates)
	current := s.rates
	s.mu.Unlock()

	if err := s.deps.Rates.Save(ctx, current); err != nil {
		slog.Warn("store_write_failed", "store", "rates", "error", err)
		return failure.IO("rates", err)
	}
	slog.Info("rates_changed", "junior", current.Junior, "senior", current.Senior)
	return nil
}

// CalculateFee returns the yearly fee for m.
// POST: PASSIVE pays the passive fee; ACTIVE under JuniorAge pays the junior rate;
// ACTIVE from SeniorAge pays the discounted senior rate; other ACTIVE members pay the senior rate
// INVARIANT: depends only on status, age and the current rates
func (s *Service) CalculateFee(m member.Member) float64 {
	if !m.IsActive() {
		return s.fees.PassiveFee
	}
	r := s.Rates()
	switch {
	case m.Age < s.fees.JuniorAge:
		return r.Junior
	case m.Age >= s.fees.SeniorAge:
		return r.Senior * s.fees.SeniorDiscount
	default:
		return r.Senior
	}
}

// Registration is the outcome of RegisterPayment.
type Registration struct {
	Payment   payment.Payment
	Fee       float64 // fee the member owes under the current rates
	Persisted bool    // false when the payment history could not be written
}

// AmountMatchesFee reports whether the paid amount equals the computed fee.
func (r Registration) AmountMatchesFee() bool {
	return r.Payment.Amount == r.Fee
}

// RegisterPayment records a completed payment for member memberID.
// PRE: none
// POST: Amount <= 0 is ErrInvalidInput and unknown member is ErrNotFound, both before any change;
// otherwise the payment is appended, the member becomes COMPLETE and the history is persisted
// INVARIANT: the payment is appended only while its member is held, so it never references a deleted member
// The amount is not reconciled with the fee.
func (s *Service) RegisterPayment(ctx context.Context, memberID int, amount float64) (Registration, error) {
	if err := validate.Payment(amount, member.PaymentComplete); err != nil {
		return Registration{}, err
	}

	now, ref := s.deps.Now(), s.deps.NewRef()
	var reg Registration
	err := s.deps.Members.SetPaymentStatusWith(ctx, memberID, member.PaymentComplete, func(m member.Member) error {
		p, err := s.deps.Payments.Register(func(id int) (payment.Payment, error) {
			return payment.New(id, &m, member.PaymentComplete, now, amount, ref)
		})
		if err != nil {
			return failure.InvalidInput("%v", err)
		}
		reg = Registration{Payment: p, Fee: s.CalculateFee(m), Persisted: true}
		return nil
	})
	if err != nil {
		return Registration{}, err
	}
	p := reg.Payment

	if err := s.deps.Payments.Persist(ctx); err != nil {
		slog.Warn("store_write_failed", "store", "payments", "error", err)
		reg.Persisted = false
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.PaymentRegistered(amount)
	}

	slog.Info("payment_event", "event", "payment_registered",
		"payment_id", p.ID, "member_id", memberID, "amount", amount, "reference", p.Reference)
	if !reg.AmountMatchesFee() {
		slog.Info("payment_amount_differs_from_fee", "member_id", memberID, "amount", amount, "fee", reg.Fee)
	}
	return reg, nil
}

// MarkPaymentFailed sets member memberID's payment status to FAILED.
// POST: unknown member is ErrNotFound
func (s *Service) MarkPaymentFailed(ctx context.Context, memberID int) error {
	if err := s.deps.Members.SetPaymentStatus(ctx, memberID, member.PaymentFailed); err != nil {
		return err
	}
	slog.Info("payment_event", "event", "payment_failed", "member_id", memberID)
	return nil
}

// StartNewSeason resets every member's payment status to PENDING.
// POST: Returns how many members changed
func (s *Service) StartNewSeason(ctx context.Context) int {
	n := s.deps.Members.SetAllPaymentStatus(ctx, member.PaymentPending)
	slog.Info("payment_event", "event", "season_started", "reset", n)
	return n
}

// PaymentsFor returns member memberID's payment history in insertion order.
func (s *Service) PaymentsFor(memberID int) []payment.Payment {
	return s.deps.Payments.FindByMemberID(memberID)
}

// FormatAmount renders a DKK amount without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
