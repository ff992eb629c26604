package orchestrators

import (
	"context"
	"log/slog"

	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
)

// UpdateMemberInput carries input for the orchestrator.
type UpdateMemberInput struct {
	ID int
	MemberInput
}

// UpdateMemberDeps holds dependencies for UpdateMember.
type UpdateMemberDeps struct {
	MemberStore MemberStore
	Delimiter   string
}

// ExecuteUpdateMember replaces a member's editable attributes.
// PRE: none
// POST: Member updated in place and the collection reloaded; unknown id is ErrNotFound
// INVARIANT: ID, variant and payment status are kept
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps UpdateMemberDeps) error {
	d, err := input.details(delimiterOrDefault(deps.Delimiter))
	if err != nil {
		return err
	}

	m, ok := deps.MemberStore.FindByID(input.ID)
	if !ok {
		return failure.NotFound("no member with id %d", input.ID)
	}
	m.Apply(d)
	if err := deps.MemberStore.Update(ctx, m); err != nil {
		return err
	}
	if err := deps.MemberStore.Reload(ctx); err != nil {
		return err
	}

	slog.Info("member_event", "event", "member_updated", "member_id", m.ID)
	return nil
}

// InputFromMember returns the editable attributes of m as input.
func InputFromMember(m member.Member) MemberInput {
	return MemberInput{
		Name:           m.Name,
		Email:          m.Email,
		Age:            m.Age,
		Phone:          m.Phone,
		City:           m.Address.City,
		Street:         m.Address.Street,
		Region:         m.Address.Region,
		Zipcode:        m.Address.Zipcode,
		MembershipType: m.Type.String(),
		Status:         string(m.Status),
		Activity:       string(m.Activity),
	}
}
