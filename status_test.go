package integrator

import "testing"

func TestStatus_String_Unset(t *testing.T) {
	if s := StatusUnset.String(); s != "unset" {
		t.Errorf("expected 'unset', got %q", s)
	}
}

func TestStatus_String_Maintenance(t *testing.T) {
	if s := StatusMaintenance.String(); s != "maintenance" {
		t.Errorf("expected 'maintenance', got %q", s)
	}
}

func TestStatus_String_Active(t *testing.T) {
	if s := StatusActive.String(); s != "active" {
		t.Errorf("expected 'active', got %q", s)
	}
}

func TestStatus_String_Blocked(t *testing.T) {
	if s := StatusBlocked.String(); s != "blocked" {
		t.Errorf("expected 'blocked', got %q", s)
	}
}

func TestStatus_String_Unknown(t *testing.T) {
	unknown := Status(999)
	if s := unknown.String(); s != "unknown" {
		t.Errorf("expected 'unknown', got %q", s)
	}
}

func TestStatusSinkFunc(t *testing.T) {
	var gotStatus Status
	var gotMessage string
	sink := StatusSinkFunc(func(s Status, m string) {
		gotStatus = s
		gotMessage = m
	})
	sink.SetStatus(StatusBlocked, "host is required")
	if gotStatus != StatusBlocked {
		t.Errorf("expected blocked, got %s", gotStatus)
	}
	if gotMessage != "host is required" {
		t.Errorf("expected message to carry through, got %q", gotMessage)
	}
}
