package validation

import (
	"strings"
	"testing"
)

func TestValidateSendAcceptsBasicMessage(t *testing.T) {
	SetRules(Rules{})
	if err := ValidateSend(1, 2, "hello"); err != nil {
		t.Fatalf("ValidateSend: %v", err)
	}
}

func TestValidateSendRejections(t *testing.T) {
	SetRules(Rules{})
	cases := []struct {
		name     string
		sender   int64
		receiver int64
		body     string
	}{
		{"missing sender", 0, 2, "hi"},
		{"missing receiver", 1, 0, "hi"},
		{"negative receiver", 1, -3, "hi"},
		{"self message", 7, 7, "hi"},
		{"empty body", 1, 2, ""},
		{"whitespace body", 1, 2, "   \n\t"},
	}
	for _, c := range cases {
		err := ValidateSend(c.sender, c.receiver, c.body)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", c.name, err)
		}
	}
}

func TestValidateSendBodyCap(t *testing.T) {
	SetRules(Rules{MaxBodyBytes: 10})
	defer SetRules(Rules{})

	if err := ValidateSend(1, 2, "0123456789"); err != nil {
		t.Fatalf("body at cap should pass: %v", err)
	}
	if err := ValidateSend(1, 2, "0123456789x"); err == nil {
		t.Fatalf("body over cap should fail")
	}
}

func TestValidateSendDefaultCap(t *testing.T) {
	SetRules(Rules{})
	big := strings.Repeat("a", 4097)
	err := ValidateSend(1, 2, big)
	if err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error for oversized body, got %v", err)
	}
}

func TestIsValidationIgnoresOtherErrors(t *testing.T) {
	if IsValidation(nil) {
		t.Fatalf("nil is not a validation error")
	}
}
