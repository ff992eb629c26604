package payments

import (
	"fmt"

	"swimclub/internal/domain/member"
)

// Summary is the fee-model view of a member snapshot.
type Summary struct {
	Paid      int
	Pending   int
	Collected float64 // sum of CalculateFee over paid members, not of recorded amounts
}

// String renders the three summary lines.
func (s Summary) String() string {
	return fmt.Sprintf("Total Members Paid: %d\nTotal Members Pending: %d\nTotal Payments Collected: %s DKK",
		s.Paid, s.Pending, FormatAmount(s.Collected))
}

// Summary reports paid and pending counts and the fees of the paid members.
// PRE: members is a snapshot, e.g. from the member repository
// POST: FAILED members are counted in neither total
func (s *Service) Summary(members []member.Member) Summary {
	var sum Summary
	for _, m := range members {
		switch m.PaymentStatus {
		case member.PaymentComplete:
			sum.Paid++
			sum.Collected += s.CalculateFee(m)
		case member.PaymentPending:
			sum.Pending++
		}
	}
	return sum
}

// PaidMembers returns the members whose fee is settled, in input order.
func (s *Service) PaidMembers(members []member.Member) []member.Member {
	return byStatus(members, member.PaymentComplete)
}

// PendingMembers returns the members whose fee is outstanding, in input order.
func (s *Service) PendingMembers(members []member.Member) []member.Member {
	return byStatus(members, member.PaymentPending)
}

// ExpectedIncome returns the sum of the fees owed by all members.
func (s *Service) ExpectedIncome(members []member.Member) float64 {
	total := 0.0
	for _, m := range members {
		total += s.CalculateFee(m)
	}
	return total
}

func byStatus(members []member.Member, status member.PaymentStatus) []member.Member {
	var out []member.Member
	for _, m := range members {
		if m.PaymentStatus == status {
			out = append(out, m)
		}
	}
	return out
}
