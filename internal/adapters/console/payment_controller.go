package console

import (
	"context"
	"fmt"

	"swimclub/internal/application/payments"
	"swimclub/internal/domain/member"
	"swimclub/internal/domain/payment"
)

// MemberSource supplies member snapshots to the payment screens.
type MemberSource interface {
	FindAll() []member.Member
	FindByID(id int) (member.Member, bool)
	Unsaved() bool
}

// PaymentController serves the treasurer's payment screens.
type PaymentController struct {
	svc     *payments.Service
	members MemberSource
}

// NewPaymentController creates a controller over svc.
func NewPaymentController(svc *payments.Service, members MemberSource) *PaymentController {
	return &PaymentController{svc: svc, members: members}
}

// RegisterPayment records a payment and notes when the amount differs from the fee.
func (c *PaymentController) RegisterPayment(ctx context.Context, memberID int, amount float64) string {
	reg, err := c.svc.RegisterPayment(ctx, memberID, amount)
	if err != nil {
		return errorMessage(err)
	}
	msg := fmt.Sprintf("Payment of %s registered for member %d (%s). Reference: %s",
		dkk(reg.Payment.Amount), reg.Payment.MemberID, reg.Payment.MemberName, reg.Payment.Reference)
	if !reg.AmountMatchesFee() {
		msg += fmt.Sprintf("\nNote: the membership fee for this member is %s.", dkk(reg.Fee))
	}
	if !reg.Persisted {
		msg += "\nWarning: the payment could not be saved to disk and exists only in memory."
	}
	return c.withUnsaved(msg)
}

// CalculateFee shows the fee of one member.
func (c *PaymentController) CalculateFee(memberID int) string {
	m, ok := c.members.FindByID(memberID)
	if !ok {
		return fmt.Sprintf("Error: no member with id %d", memberID)
	}
	return fmt.Sprintf("Membership fee for member %d (%s): %s", m.ID, m.Name, dkk(c.svc.CalculateFee(m)))
}

// Summary renders the payment summary of all members.
func (c *PaymentController) Summary() string {
	return c.svc.Summary(c.members.FindAll()).String()
}

// PaidList lists members whose fee is settled.
func (c *PaymentController) PaidList() []string {
	return memberLines(c.svc.PaidMembers(c.members.FindAll()))
}

// PendingList lists members whose fee is outstanding.
func (c *PaymentController) PendingList() []string {
	return memberLines(c.svc.PendingMembers(c.members.FindAll()))
}

// ExpectedIncome shows the total of every member's fee.
func (c *PaymentController) ExpectedIncome() string {
	return "Expected income: " + dkk(c.svc.ExpectedIncome(c.members.FindAll()))
}

// History lists the payments of one member.
func (c *PaymentController) History(memberID int) []string {
	if _, ok := c.members.FindByID(memberID); !ok {
		return []string{fmt.Sprintf("Error: no member with id %d", memberID)}
	}
	ps := c.svc.PaymentsFor(memberID)
	if len(ps) == 0 {
		return []string{"No payments."}
	}
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, fmt.Sprintf("#%d %s %s %s %s", p.ID, p.Date.Format(payment.DateLayout), dkk(p.Amount), p.Status, p.Reference))
	}
	return out
}

// Rates shows the current rates.
func (c *PaymentController) Rates() string {
	r := c.svc.Rates()
	return fmt.Sprintf("Junior rate: %s\nSenior rate: %s", dkk(r.Junior), dkk(r.Senior))
}

// SetJuniorRate changes the junior rate.
func (c *PaymentController) SetJuniorRate(ctx context.Context, rate float64) string {
	if err := c.svc.SetJuniorRate(ctx, rate); err != nil {
		return errorMessage(err)
	}
	return "Junior rate set to " + dkk(rate) + "."
}

// SetSeniorRate changes the senior rate.
func (c *PaymentController) SetSeniorRate(ctx context.Context, rate float64) string {
	if err := c.svc.SetSeniorRate(ctx, rate); err != nil {
		return errorMessage(err)
	}
	return "Senior rate set to " + dkk(rate) + "."
}

// AddReminder stores a free-text reminder.
func (c *PaymentController) AddReminder(ctx context.Context, text string) string {
	if err := c.svc.AddReminder(ctx, text); err != nil {
		return errorMessage(err)
	}
	return "Reminder added."
}

// Reminders lists every reminder.
func (c *PaymentController) Reminders() []string {
	rs := c.svc.Reminders()
	if len(rs) == 0 {
		return []string{"No reminders."}
	}
	return rs
}

// RemoveReminder removes a reminder by exact text.
func (c *PaymentController) RemoveReminder(ctx context.Context, text string) string {
	if c.svc.RemoveReminder(ctx, text) {
		return "Reminder removed."
	}
	return "Reminder not found."
}

// ClearReminders removes every reminder.
func (c *PaymentController) ClearReminders(ctx context.Context) string {
	return fmt.Sprintf("Cleared %d reminders.", c.svc.ClearReminders(ctx))
}

// GenerateReminders adds reminders for every unpaid member.
func (c *PaymentController) GenerateReminders(ctx context.Context) string {
	n, err := c.svc.GenerateReminders(ctx)
	if err != nil {
		return errorMessage(err)
	}
	return fmt.Sprintf("Generated %d reminders.", n)
}

// SendReminders emails the reminders to their members.
func (c *PaymentController) SendReminders(ctx context.Context) string {
	report, err := c.svc.SendReminders(ctx)
	if err != nil {
		return errorMessage(err)
	}
	return fmt.Sprintf("Sent %d reminders (%d skipped).", report.Sent, report.Skipped)
}

// StartNewSeason resets every member to PENDING.
func (c *PaymentController) StartNewSeason(ctx context.Context) string {
	n := c.svc.StartNewSeason(ctx)
	return c.withUnsaved(fmt.Sprintf("New season started: %d members reset to PENDING.", n))
}

// MarkFailed marks a member's payment as FAILED.
func (c *PaymentController) MarkFailed(ctx context.Context, memberID int) string {
	if err := c.svc.MarkPaymentFailed(ctx, memberID); err != nil {
		return errorMessage(err)
	}
	return c.withUnsaved(fmt.Sprintf("Payment for member %d marked as FAILED.", memberID))
}

func (c *PaymentController) withUnsaved(msg string) string {
	if c.members.Unsaved() {
		return msg + "\n" + unsavedWarning
	}
	return msg
}
