package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidGeometry, "polygon needs at least %d vertices", 3)

	if err.Code != ErrCodeInvalidGeometry {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidGeometry)
	}
	if !strings.Contains(err.Error(), "INVALID_GEOMETRY") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "3 vertices") {
		t.Errorf("Error() should contain the formatted message, got %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeModeler, cause, "draw polyline %s", "Q1_pad")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should satisfy errors.Is against its cause")
	}
	if !Is(err, ErrCodeModeler) {
		t.Error("Is should match the wrapping code")
	}
	if Is(err, ErrCodeInvalidInput) {
		t.Error("Is should not match a different code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeUnknownChip, "no chip %q", "aux")); got != ErrCodeUnknownChip {
		t.Errorf("GetCode = %s, want %s", got, ErrCodeUnknownChip)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode on plain error = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeDesignNotFound, "design %q not found", "transmon")
	if got := UserMessage(err); strings.Contains(got, "DESIGN_NOT_FOUND") {
		t.Errorf("UserMessage should strip the code prefix, got %q", got)
	}
	if got := UserMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}

func TestValidateDesignName(t *testing.T) {
	valid := []string{"transmon", "chip_v2", "my-design.2024"}
	for _, name := range valid {
		if err := ValidateDesignName(name); err != nil {
			t.Errorf("ValidateDesignName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "../etc", "a//b", "win\\path", strings.Repeat("x", 300), "bad\x00name"}
	for _, name := range invalid {
		if err := ValidateDesignName(name); err == nil {
			t.Errorf("ValidateDesignName(%q) = nil, want error", name)
		}
	}
}

func TestValidateObjectName(t *testing.T) {
	valid := []string{"Q1_pad", "_helper", "sample_holder"}
	for _, name := range valid {
		if err := ValidateObjectName(name); err != nil {
			t.Errorf("ValidateObjectName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "1pad", "pad-1", "pad name"}
	for _, name := range invalid {
		if err := ValidateObjectName(name); err == nil {
			t.Errorf("ValidateObjectName(%q) = nil, want error", name)
		}
	}
}
