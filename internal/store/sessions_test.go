package store

import (
	"testing"
	"time"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
)

func TestSessionGetCreatesOnce(t *testing.T) {
	s := NewSessionStore()
	a := s.Get("254700000001@c.us")
	b := s.Get("254700000001@c.us")
	if a != b {
		t.Error("Get must return the same session for the same identity")
	}
	if _, ok := s.Peek("254700000002@c.us"); ok {
		t.Error("Peek must not create sessions")
	}
}

func TestSessionResetKeepsReferrer(t *testing.T) {
	s := NewSessionStore()
	sess := s.Get("254700000001@c.us")
	sess.Step = models.StepDataList
	sess.DataRecipient = "0712345678"
	s.SetReferrer("254700000001@c.us", "REF123456")

	fresh := s.Reset("254700000001@c.us")
	if fresh.Step != models.StepMain {
		t.Errorf("step = %q, want main", fresh.Step)
	}
	if fresh.DataRecipient != "" || fresh.PrevStep != "" {
		t.Error("scratch state must not survive reset")
	}
	if got := s.Referrer("254700000001@c.us"); got != "REF123456" {
		t.Errorf("referrer = %q, must survive reset", got)
	}
}

func TestSetReferrerFirstWriteWins(t *testing.T) {
	s := NewSessionStore()
	s.SetReferrer("a@c.us", "REF111111")
	s.SetReferrer("a@c.us", "REF222222")
	if got := s.Referrer("a@c.us"); got != "REF111111" {
		t.Errorf("referrer = %q, want first recorded code", got)
	}
}

func TestSweepIdle(t *testing.T) {
	s := NewSessionStore()

	stale := s.Get("stale@c.us")
	stale.Step = models.StepWithdrawPIN
	s.SetReferrer("stale@c.us", "REF123456")
	s.activity["stale@c.us"] = time.Now().Add(-time.Hour)

	fresh := s.Get("fresh@c.us")
	fresh.Step = models.StepDataList
	s.Touch("fresh@c.us")

	if swept := s.SweepIdle(30 * time.Minute); swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
	if _, ok := s.Peek("stale@c.us"); ok {
		t.Error("stale session must be dropped")
	}
	// The attribution outlives the conversation.
	if got := s.Referrer("stale@c.us"); got != "REF123456" {
		t.Error("sweep must keep the referrer")
	}
	if sess, ok := s.Peek("fresh@c.us"); !ok || sess.Step != models.StepDataList {
		t.Error("active session must not be swept")
	}
}
