package oauth_test

import (
	"strings"
	"testing"

	"github.com/elemahana/farm-api/internal/oauth"
)

func TestState_RoundTrip(t *testing.T) {
	g := oauth.NewGoogle("cid", "sec", "http://localhost/cb", "state_secret")
	st := g.MakeState("nonce-123")
	if !g.VerifyState(st) {
		t.Fatal("issued state must verify")
	}
}

func TestState_RejectsTampered(t *testing.T) {
	g := oauth.NewGoogle("cid", "sec", "http://localhost/cb", "state_secret")
	st := g.MakeState("nonce-123")

	tampered := strings.Replace(st, "nonce-123", "nonce-124", 1)
	if g.VerifyState(tampered) {
		t.Fatal("tampered payload must not verify")
	}
	if g.VerifyState("no-separator") {
		t.Fatal("state without signature must not verify")
	}

	other := oauth.NewGoogle("cid", "sec", "http://localhost/cb", "different_secret")
	if other.VerifyState(st) {
		t.Fatal("state signed with another key must not verify")
	}
}
