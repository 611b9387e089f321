package model

import (
	"strings"
	"testing"
)

func TestValidFieldKey(t *testing.T) {
	valid := []string{"a", "serial_number", "pump2", "x_1_y"}
	for _, key := range valid {
		if !ValidFieldKey(key) {
			t.Errorf("expected %q to be valid", key)
		}
	}
	invalid := []string{"", "1abc", "_a", "Serial", "serial-number", "serial number", strings.Repeat("a", 51)}
	for _, key := range invalid {
		if ValidFieldKey(key) {
			t.Errorf("expected %q to be invalid", key)
		}
	}
}

func TestKeyFromLabel(t *testing.T) {
	tests := map[string]string{
		"Serial Number":      "serial_number",
		"Serial Number (SN)": "serial_number_sn",
		"  Rated   Power ":   "rated_power",
		"Manufacturer":       "manufacturer",
		"Motor2 Speed":       "motor2_speed",
		"Phase L1 Voltage":   "phase_l1_voltage",
		"2nd Stage Pressure": "nd_stage_pressure",
	}
	for label, want := range tests {
		if got := KeyFromLabel(label); got != want {
			t.Errorf("KeyFromLabel(%q) = %q, want %q", label, got, want)
		}
	}

	long := KeyFromLabel(strings.Repeat("abcde ", 20))
	if len(long) > MaxFieldKeyLength || !ValidFieldKey(long) {
		t.Fatalf("expected truncated valid key, got %q", long)
	}
}

func TestDefaultLabeler(t *testing.T) {
	tests := map[string]string{
		"serial_number": "Serial Number",
		"ratedPower":    "Rated Power",
		"install-date":  "Install Date",
		"pump2_flow":    "Pump 2 Flow",
		"":              "",
	}
	for key, want := range tests {
		if got := DefaultLabeler(key); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", key, got, want)
		}
	}
}
