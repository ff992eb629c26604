package email

import (
	"context"
	"strings"
	"testing"
)

// TestRenderMarkdown verifies markdown becomes HTML and raw HTML is escaped.
func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("Dear **Anna**,\nplease pay.\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(html, "<strong>Anna</strong>") {
		t.Errorf("bold not rendered: %s", html)
	}
	if !strings.Contains(html, "<br") {
		t.Errorf("hard wrap not rendered: %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML passed through: %s", html)
	}
}

// TestNoopSender verifies the noop sender accepts every request.
func TestNoopSender(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), SendRequest{To: []string{"anna@club.dk"}, Subject: "Fee"})
	if err != nil || !strings.HasPrefix(res.MessageID, "noop-") {
		t.Errorf("Send() = %+v, %v", res, err)
	}
	results, err := s.SendBatch(context.Background(), []SendRequest{{Subject: "a"}, {Subject: "b"}})
	if err != nil || len(results) != 2 {
		t.Errorf("SendBatch() = %d results, %v", len(results), err)
	}
}

var _ Sender = (*NoopSender)(nil)
var _ Sender = (*ResendSender)(nil)
