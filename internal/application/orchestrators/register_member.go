package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"swimclub/internal/adapters/storage"
	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
	"swimclub/internal/domain/payment"
	"swimclub/internal/domain/validate"
)

// MemberStore defines the interface for member persistence.
// SaveNew and DeleteIf decide and mutate under one lock.
type MemberStore interface {
	FindByID(id int) (member.Member, bool)
	SaveNew(ctx context.Context, d member.Details) (member.Member, error)
	Update(ctx context.Context, m member.Member) error
	DeleteIf(ctx context.Context, id int, guard func(member.Member) error) error
	Reload(ctx context.Context) error
}

// PaymentHistory defines the payment lookup needed before a member is deleted.
type PaymentHistory interface {
	FindByMemberID(id int) []payment.Payment
}

// MemberInput carries the user-entered attributes of a member.
type MemberInput struct {
	Name           string
	Email          string
	Age            int
	Phone          int
	City           string
	Street         string
	Region         string
	Zipcode        string
	MembershipType string
	Status         string // empty means ACTIVE
	Activity       string // empty means NONE
}

// details validates input and converts it to member details.
// POST: Returns the first failed rule as an ErrInvalidInput error
func (in MemberInput) details(delimiter string) (member.Details, error) {
	if err := validate.MemberData(in.Name, in.Age, in.MembershipType, in.Email, in.Phone); err != nil {
		return member.Details{}, err
	}
	fields := []struct{ name, value string }{
		{"name", in.Name}, {"email", in.Email}, {"city", in.City},
		{"street", in.Street}, {"region", in.Region}, {"zipcode", in.Zipcode},
	}
	for _, f := range fields {
		if err := validate.RecordField(f.name, f.value, delimiter); err != nil {
			return member.Details{}, err
		}
	}

	mt, _ := member.ParseMembershipType(in.MembershipType)
	status := member.StatusActive
	if strings.TrimSpace(in.Status) != "" {
		s, err := member.ParseStatus(in.Status)
		if err != nil {
			return member.Details{}, failure.InvalidInput("%v", err)
		}
		status = s
	}
	activity, err := member.ParseActivity(in.Activity)
	if err != nil {
		return member.Details{}, failure.InvalidInput("%v", err)
	}

	return member.Details{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Age:   in.Age,
		Phone: in.Phone,
		Address: member.Address{
			City:    strings.TrimSpace(in.City),
			Street:  strings.TrimSpace(in.Street),
			Region:  strings.TrimSpace(in.Region),
			Zipcode: strings.TrimSpace(in.Zipcode),
		},
		Type:     mt,
		Status:   status,
		Activity: activity,
	}, nil
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	MemberInput
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStore
	Delimiter   string
}

// ExecuteRegisterMember coordinates member registration.
// PRE: none
// POST: Member created with the next free id, variant chosen by age, PaymentStatus=PENDING;
// the collection is reloaded from the store
// INVARIANT: Invalid input is rejected before any change; concurrent registrations get distinct ids
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (int, error) {
	d, err := input.details(delimiterOrDefault(deps.Delimiter))
	if err != nil {
		return 0, err
	}

	m, err := deps.MemberStore.SaveNew(ctx, d)
	if err != nil {
		return 0, err
	}
	if err := deps.MemberStore.Reload(ctx); err != nil {
		return 0, err
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID, "variant", m.Variant.String())
	return m.ID, nil
}

func delimiterOrDefault(d string) string {
	if d == "" {
		return storage.DefaultDelimiter
	}
	return d
}
