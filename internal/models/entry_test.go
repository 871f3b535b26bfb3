package models

import (
	"strings"
	"testing"
)

func TestValidateEntryKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"release", false},
		{"v1.2.0", false},
		{"deploy-prod_eu", false},
		{"0day", false},
		{strings.Repeat("a", 64), false},
		{"", true},
		{"Release", true},
		{"-leading", true},
		{".hidden", true},
		{"has space", true},
		{"slash/key", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateEntryKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntryKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestEntry_Source(t *testing.T) {
	e := &Entry{Key: "a", Datetime: "2008-07-17T09:24:17Z", Title: "July 17", IsTime: true}
	if got := e.Source(); got != "2008-07-17T09:24:17Z" {
		t.Errorf("time entry source = %q", got)
	}

	e.IsTime = false
	if got := e.Source(); got != "July 17" {
		t.Errorf("plain entry source = %q", got)
	}
}

func TestEntry_Validate(t *testing.T) {
	valid := &Entry{Key: "launch", Datetime: "2008-07-17T09:24:17Z", IsTime: true}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missing := &Entry{Key: "launch", Title: "2008-07-17T09:24:17Z", IsTime: true}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for time entry without datetime")
	}

	plain := &Entry{Key: "launch", Title: "2008-07-17T09:24:17Z"}
	if err := plain.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	badKey := &Entry{Key: "Launch!", Datetime: "x", IsTime: true}
	if err := badKey.Validate(); err == nil {
		t.Error("expected error for invalid key")
	}
}
