package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestObserveStore verifies outcomes are split by label.
func TestObserveStore(t *testing.T) {
	m := New()
	m.ObserveStore("members", "write", time.Millisecond, nil)
	m.ObserveStore("members", "write", time.Millisecond, nil)
	m.ObserveStore("members", "write", time.Millisecond, errors.New("disk full"))

	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("members", "write", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("members", "write", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

// TestPaymentRegistered verifies count and amount totals.
func TestPaymentRegistered(t *testing.T) {
	m := New()
	m.PaymentRegistered(1600)
	m.PaymentRegistered(500)

	if got := testutil.ToFloat64(m.paymentsRegistered); got != 2 {
		t.Errorf("payments = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.paymentAmount); got != 2100 {
		t.Errorf("amount = %v, want 2100", got)
	}
}

// TestNilMetrics verifies a nil collector set is a no-op.
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveStore("members", "read", time.Millisecond, nil)
	m.PaymentRegistered(100)
}

// TestWriteTextfile verifies the exposition file holds the registered series.
func TestWriteTextfile(t *testing.T) {
	m := New()
	m.PaymentRegistered(1000)
	path := filepath.Join(t.TempDir(), "swimclub.prom")

	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "swimclub_payments_registered_total 1") {
		t.Errorf("textfile missing payments counter:\n%s", data)
	}
}
