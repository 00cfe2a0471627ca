package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeSimulationNotFound, "simulation not found")
	if err.Code != CodeSimulationNotFound {
		t.Errorf("expected code %s, got %s", CodeSimulationNotFound, err.Code)
	}
	if !strings.Contains(err.Error(), "simulation not found") {
		t.Errorf("message missing from Error(): %s", err.Error())
	}
	if !strings.Contains(err.Error(), "SIM_001") {
		t.Errorf("code missing from Error(): %s", err.Error())
	}
}

func TestErrorFormatWithDetail(t *testing.T) {
	err := NotFound("simulation not found").WithDetail("id=abc")
	want := "[COMMON_005] simulation not found: id=abc"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "failed to load simulation")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if err.Code != ErrCodeDatabaseError {
		t.Errorf("expected code %s, got %s", ErrCodeDatabaseError, err.Code)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, ErrCodeDatabaseError, "query failed") != nil {
		t.Error("Wrap(nil, ...) must return nil")
	}
}

func TestWrapUnknownPreservesOriginalCode(t *testing.T) {
	inner := New(CodeSimulationNotFound, "not found")
	outer := Wrap(inner, CodeUnknown, "while serving request")
	if outer.Code != CodeSimulationNotFound {
		t.Errorf("expected original code preserved, got %s", outer.Code)
	}
}

func TestIsCodeTraversesChain(t *testing.T) {
	inner := New(CodeSimulationNotFound, "not found")
	outer := Wrap(inner, ErrCodeInternal, "projection failed")
	wrapped := fmt.Errorf("handler: %w", outer)

	if !IsCode(wrapped, CodeSimulationNotFound) {
		t.Error("IsCode should find SIM_001 deep in the chain")
	}
	if IsCode(wrapped, CodeConflict) {
		t.Error("IsCode must not match absent codes")
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", NotFound("x"), true},
		{"simulation not found", New(CodeSimulationNotFound, "x"), true},
		{"internal", Internal("x"), false},
		{"plain error", stderrors.New("x"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFound(tc.err); got != tc.want {
				t.Errorf("IsNotFound = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Error("nil error should map to CodeOK")
	}
	if GetCode(stderrors.New("boom")) != CodeUnknown {
		t.Error("plain error should map to CodeUnknown")
	}
	if GetCode(NewValidation("bad")) != CodeValidation {
		t.Error("validation error should expose its code")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeSimulationNotFound: 404,
		ErrCodeNotFound:           404,
		ErrCodeValidation:         400,
		ErrCodeTooManyRequests:    429,
		ErrCodeInternal:           500,
		ErrCodeProjectionFailed:   500,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Errorf("%s: HTTPStatus = %d, want %d", code, got, want)
		}
	}
}

func TestStackCaptured(t *testing.T) {
	err := New(CodeInternal, "boom")
	if err.Stack == "" {
		t.Error("expected a captured stack trace")
	}
	if !strings.Contains(err.Stack, "errors_test.go") {
		t.Errorf("stack should reference the call site, got: %s", err.Stack)
	}
}
