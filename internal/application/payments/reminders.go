package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"swimclub/internal/adapters/email"
	"swimclub/internal/domain/member"
)

// ErrNoSender is returned by SendReminders when no email sender is configured.
var ErrNoSender = errors.New("no email sender configured")

// reminderSubject is the subject line of reminder emails.
const reminderSubject = "Membership fee reminder"

// memberRef finds the member id embedded in a reminder.
var memberRef = regexp.MustCompile(`member (\d+)`)

// ReminderText is the reminder generated for a member with an outstanding fee.
func ReminderText(m member.Member, fee float64) string {
	return fmt.Sprintf("Reminder for member %d (%s): outstanding membership fee of %s DKK", m.ID, m.Name, FormatAmount(fee))
}

// AddReminder stores a free-text reminder.
// POST: blank or multi-line text is ErrInvalidInput
func (s *Service) AddReminder(ctx context.Context, text string) error {
	return s.deps.Payments.SaveReminder(ctx, text)
}

// Reminders returns every stored reminder.
func (s *Service) Reminders() []string {
	return s.deps.Payments.Reminders()
}

// RemoveReminder removes one reminder matching text exactly.
// POST: false, without error, when nothing matched
func (s *Service) RemoveReminder(ctx context.Context, text string) bool {
	return s.deps.Payments.RemoveReminder(ctx, text)
}

// ClearReminders removes every reminder and returns how many there were.
func (s *Service) ClearReminders(ctx context.Context) int {
	return s.deps.Payments.ClearReminders(ctx)
}

// GenerateReminders adds a reminder for each PENDING or FAILED member.
// POST: Returns the number added; a reminder whose exact text is already stored is not added again
func (s *Service) GenerateReminders(ctx context.Context) (int, error) {
	added := 0
	for _, m := range s.deps.Members.FindAll() {
		if m.IsPaid() {
			continue
		}
		text := ReminderText(m, s.CalculateFee(m))
		if s.deps.Payments.HasReminder(text) {
			continue
		}
		if err := s.deps.Payments.SaveReminder(ctx, text); err != nil {
			return added, err
		}
		added++
	}
	slog.Info("reminder_event", "event", "reminders_generated", "added", added)
	return added, nil
}

// SendReport is the outcome of SendReminders.
type SendReport struct {
	Sent    int
	Skipped int // reminders without a known member or email address
}

// SendReminders emails each reminder to the member whose id it embeds.
// PRE: a sender is configured
// POST: Reminders are not removed; a provider failure is returned with the count sent so far
func (s *Service) SendReminders(ctx context.Context) (SendReport, error) {
	if s.deps.Sender == nil {
		return SendReport{}, ErrNoSender
	}

	var report SendReport
	var reqs []email.SendRequest
	for _, text := range s.deps.Payments.Reminders() {
		m, ok := s.reminderMember(text)
		if !ok || m.Email == "" {
			report.Skipped++
			continue
		}
		html, err := email.RenderMarkdown(reminderBody(m, text, s.CalculateFee(m)))
		if err != nil {
			return report, fmt.Errorf("render reminder for member %d: %w", m.ID, err)
		}
		reqs = append(reqs, email.SendRequest{
			To:      []string{m.Email},
			Subject: reminderSubject,
			HTML:    html,
			Text:    text,
		})
	}
	if len(reqs) == 0 {
		return report, nil
	}

	results, err := s.deps.Sender.SendBatch(ctx, reqs)
	report.Sent = len(results)
	if err != nil {
		return report, fmt.Errorf("send reminders: %w", err)
	}
	slog.Info("reminder_event", "event", "reminders_sent", "sent", report.Sent, "skipped", report.Skipped)
	return report, nil
}

func (s *Service) reminderMember(text string) (member.Member, bool) {
	match := memberRef.FindStringSubmatch(text)
	if match == nil {
		return member.Member{}, false
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return member.Member{}, false
	}
	return s.deps.Members.FindByID(id)
}

// reminderBody is the markdown source of a reminder email.
func reminderBody(m member.Member, text string, fee float64) string {
	return fmt.Sprintf("Dear **%s**,\n\n%s.\n\nYour current fee is **%s DKK**. Please pay at the club office or by bank transfer.\n\nThank you,\nThe treasurer",
		m.Name, text, FormatAmount(fee))
}
