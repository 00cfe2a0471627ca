package common

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewIDValidates(t *testing.T) {
	id := NewID()
	if err := id.Validate(); err != nil {
		t.Errorf("freshly generated ID should validate: %v", err)
	}
}

func TestIDValidateRejectsGarbage(t *testing.T) {
	for _, bad := range []ID{"", "not-a-uuid", "12345"} {
		if err := bad.Validate(); err == nil {
			t.Errorf("expected validation error for %q", bad)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	orig := Timestamp(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !time.Time(back).Equal(time.Time(orig)) {
		t.Errorf("round trip mismatch: %v != %v", back, orig)
	}
}

func TestPaginationValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       Pagination
		wantErr bool
	}{
		{"valid", Pagination{Page: 1, PageSize: 20}, false},
		{"zero page", Pagination{Page: 0, PageSize: 20}, true},
		{"oversized", Pagination{Page: 1, PageSize: 501}, true},
		{"zero size", Pagination{Page: 1, PageSize: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 25}
	if p.Offset() != 50 {
		t.Errorf("expected offset 50, got %d", p.Offset())
	}
}

func TestSuccessResponseShape(t *testing.T) {
	resp := NewSuccessResponse(map[string]int{"clusters": 4})
	if !resp.Success {
		t.Error("success response must set Success")
	}
	if resp.Error != nil {
		t.Error("success response must not carry an error")
	}
}

func TestErrorResponseShape(t *testing.T) {
	resp := NewErrorResponse("SIM_001", "simulation not found")
	if resp.Success {
		t.Error("error response must not set Success")
	}
	if resp.Error == nil || resp.Error.Code != "SIM_001" {
		t.Errorf("unexpected error detail: %+v", resp.Error)
	}
}
