package models

import (
	"testing"
	"time"
)

func TestCredentialUsableBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cred := Credential{Token: "tok", ExpiresAt: now.Add(10 * time.Minute)}

	if !cred.Usable(now) {
		t.Fatalf("credential should be usable well before expiry")
	}

	margin := cred.ExpiresAt.Add(-SafetyMargin)
	if !cred.Usable(margin.Add(-time.Second)) {
		t.Fatalf("credential should be usable just inside the margin")
	}
	if cred.Usable(margin) {
		t.Fatalf("credential must be unusable exactly at expires_at - margin")
	}
	if cred.Usable(margin.Add(time.Second)) {
		t.Fatalf("credential must be unusable past the margin")
	}
	if cred.Usable(cred.ExpiresAt) {
		t.Fatalf("credential must be unusable at expiry")
	}
}

func TestCredentialEmptyTokenNeverUsable(t *testing.T) {
	cred := Credential{ExpiresAt: time.Now().Add(time.Hour)}
	if cred.Usable(time.Now()) {
		t.Fatalf("empty token must not be usable")
	}
}

func TestOnboardingStateTerminal(t *testing.T) {
	terminal := []OnboardingState{StateGranted, StateDenied, StateFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	open := []OnboardingState{StateIdle, StateIdentityCreated, StateCredentialMinted, StateAwaitingConsent}
	for _, s := range open {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
