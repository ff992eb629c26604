package payment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"swimclub/internal/adapters/storage"
	memberDomain "swimclub/internal/domain/member"
	domain "swimclub/internal/domain/payment"
)

// fieldCount is the number of fields in a payment record.
const fieldCount = 6

// EncodePayment renders p as a record line.
// Field order: paymentId; memberId; paymentStatus; paymentDate; amountPerYear; reference.
func EncodePayment(p domain.Payment, delimiter string) string {
	return strings.Join([]string{
		strconv.Itoa(p.ID),
		strconv.Itoa(p.MemberID),
		string(p.Status),
		p.Date.Format(domain.DateLayout),
		strconv.FormatFloat(p.Amount, 'f', -1, 64),
		p.Reference,
	}, delimiter)
}

// decoded is a parsed payment line whose member reference is not yet resolved.
type decoded struct {
	id        int
	memberID  int
	status    memberDomain.PaymentStatus
	date      time.Time
	amount    float64
	reference string
}

// decodePayment parses a record line.
// POST: Returns an error wrapping storage.ErrCorruptRecord on any malformed field
func decodePayment(line, delimiter string) (decoded, error) {
	f := strings.Split(line, delimiter)
	if len(f) != fieldCount {
		return decoded{}, fmt.Errorf("%w: payment record has %d fields, want %d", storage.ErrCorruptRecord, len(f), fieldCount)
	}
	id, err := strconv.Atoi(strings.TrimSpace(f[0]))
	if err != nil {
		return decoded{}, fmt.Errorf("%w: payment id %q", storage.ErrCorruptRecord, f[0])
	}
	memberID, err := strconv.Atoi(strings.TrimSpace(f[1]))
	if err != nil {
		return decoded{}, fmt.Errorf("%w: payment %d: member id %q", storage.ErrCorruptRecord, id, f[1])
	}
	status, err := memberDomain.ParsePaymentStatus(f[2])
	if err != nil {
		return decoded{}, fmt.Errorf("%w: payment %d: %v", storage.ErrCorruptRecord, id, err)
	}
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(f[3]))
	if err != nil {
		return decoded{}, fmt.Errorf("%w: payment %d: date %q", storage.ErrCorruptRecord, id, f[3])
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(f[4]), 64)
	if err != nil || !(amount > 0) || math.IsInf(amount, 0) {
		return decoded{}, fmt.Errorf("%w: payment %d: amount %q", storage.ErrCorruptRecord, id, f[4])
	}
	return decoded{
		id:        id,
		memberID:  memberID,
		status:    status,
		date:      date,
		amount:    amount,
		reference: f[5],
	}, nil
}
