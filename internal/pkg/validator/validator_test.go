package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"123E4567-E89B-12D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"", // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2024-01-15"); !ok {
		t.Error("IsValidDate(2024-01-15) = false, want true")
	}
	for _, s := range []string{"15-01-2024", "2024/01/15", "2024-13-01", ""} {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "13:00", "23:59"}
	invalid := []string{"24:00", "9:3", "13:60", "noon", ""}
	for _, s := range valid {
		if _, ok := IsValidClock(s); !ok {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidClock(s); ok {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+05:30"}
	invalid := []string{"2024-01-15 10:30:00", "2024-01-15", ""}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidEmployeeCode(t *testing.T) {
	if !IsValidEmployeeCode("1024-0091") {
		t.Error("IsValidEmployeeCode(1024-0091) = false, want true")
	}
	for _, s := range []string{"10240091", "102-0091", "1024-009a", ""} {
		if IsValidEmployeeCode(s) {
			t.Errorf("IsValidEmployeeCode(%q) = true, want false", s)
		}
	}
}
