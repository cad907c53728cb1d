package validator

import (
	"errors"
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
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
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

func TestIsPercentage(t *testing.T) {
	cases := []struct {
		input float64
		want  bool
	}{
		{0, true},
		{55.5, true},
		{100, true},
		{-0.1, false},
		{100.1, false},
	}
	for _, c := range cases {
		if got := IsPercentage(c.input); got != c.want {
			t.Errorf("IsPercentage(%v) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestParseIntInRange(t *testing.T) {
	cases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"", 30, false},
		{"  ", 30, false},
		{"7", 7, false},
		{"365", 365, false},
		{"0", 0, true},
		{"366", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
	}
	for _, c := range cases {
		got, err := ParseIntInRange("days", c.input, 30, 1, 365)
		if c.wantErr {
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("ParseIntInRange(%q) error = %v, want ValidationErrors", c.input, err)
				continue
			}
			if _, ok := verrs.ToMap()["days"]; !ok {
				t.Errorf("ParseIntInRange(%q) missing days field in %v", c.input, verrs.ToMap())
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseIntInRange(%q) = %d, %v, want %d", c.input, got, err, c.want)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	if errs.Error() != "a: bad; b: worse" {
		t.Errorf("Error() = %q", errs.Error())
	}
	m := errs.ToMap()
	if len(m) != 2 || m["b"] != "worse" {
		t.Errorf("ToMap() = %v", m)
	}
}
