package orchestrators

import (
	"context"
	"log/slog"

	"swimclub/internal/domain/failure"
	"swimclub/internal/domain/member"
)

// DeleteMemberInput carries input for the orchestrator.
type DeleteMemberInput struct {
	ID int
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore    MemberStore
	PaymentHistory PaymentHistory
}

// ExecuteDeleteMember removes a member.
// PRE: none
// POST: Member removed and the collection reloaded; unknown id is ErrNotFound
// INVARIANT: A member with recorded payments is never deleted (ErrInvalidInput); the
// history is checked while the member is held, so a concurrent payment cannot slip in
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	err := deps.MemberStore.DeleteIf(ctx, input.ID, func(m member.Member) error {
		if n := len(deps.PaymentHistory.FindByMemberID(m.ID)); n > 0 {
			return failure.InvalidInput("member %d has %d recorded payments and cannot be deleted", m.ID, n)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := deps.MemberStore.Reload(ctx); err != nil {
		return err
	}

	slog.Info("member_event", "event", "member_deleted", "member_id", input.ID)
	return nil
}
