package utils

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestIsSafaricomNumber(t *testing.T) {
	tests := []struct {
		num  string
		want bool
	}{
		{"0712345678", true},
		{"0110234567", true},
		{"0799999999", true},
		{"0612345678", false},
		{"071234567", false},
		{"07123456789", false},
		{"254712345678", false},
		{"071234567a", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSafaricomNumber(tt.num); got != tt.want {
			t.Errorf("IsSafaricomNumber(%q) = %v, want %v", tt.num, got, tt.want)
		}
	}
}

func TestIsPIN(t *testing.T) {
	for pin, want := range map[string]bool{
		"1234": true, "0000": true, "123": false, "12345": false, "12a4": false, "": false,
	} {
		if got := IsPIN(pin); got != want {
			t.Errorf("IsPIN(%q) = %v, want %v", pin, got, want)
		}
	}
}

func TestGeneratedIDFormats(t *testing.T) {
	if id := GenerateOrderID(); !strings.HasPrefix(id, "FY'S-") || len(id) != len("FY'S-123456") {
		t.Errorf("unexpected order id %q", id)
	}
	if code := GenerateReferralCode(); !strings.HasPrefix(code, "REF") || len(code) != len("REF123456") {
		t.Errorf("unexpected referral code %q", code)
	}
	if id := GenerateWithdrawalID(); !strings.HasPrefix(id, "WD-") || len(id) != len("WD-1234") {
		t.Errorf("unexpected withdrawal id %q", id)
	}
}

func TestFormatKenyaTime(t *testing.T) {
	utc := time.Date(2024, 3, 1, 21, 30, 0, 0, time.UTC)
	if got := FormatKenyaTime(utc); got != "2024-03-02 00:30:00" {
		t.Errorf("FormatKenyaTime = %q", got)
	}
}

func TestMaskWhatsAppID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"254701234567@c.us", "25470****7@c.us"},
		{"no-at-sign", "no-at-sign"},
		{"12345@c.us", "12345@c.us"},
	}
	for _, tt := range tests {
		if got := MaskWhatsAppID(tt.in); got != tt.want {
			t.Errorf("MaskWhatsAppID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", `daily 500MB 60`, []string{"daily", "500MB", "60"}},
		{"single quoted token", `daily "500MB" 60`, []string{"daily", "500MB", "60"}},
		{"quoted with spaces", `daily "500 MB Bundle" 60 "24 hours"`, []string{"daily", "500 MB Bundle", "60", "24 hours"}},
		{"unterminated quote", `daily "500 MB`, []string{"daily", "500 MB"}},
		{"empty", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitQuoted(strings.Fields(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitQuoted(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	if v, ok := ParseAmount("50"); !ok || v != 50 {
		t.Errorf("ParseAmount(50) = %v, %v", v, ok)
	}
	if _, ok := ParseAmount("0"); ok {
		t.Error("ParseAmount(0) should fail")
	}
	if _, ok := ParseAmount("-5"); ok {
		t.Error("ParseAmount(-5) should fail")
	}
	if _, ok := ParseAmount("abc"); ok {
		t.Error("ParseAmount(abc) should fail")
	}
}
