package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var safaricomRe = regexp.MustCompile(`^(0[71]\d{8}|01\d{8})$`)

// IsSafaricomNumber reports whether num is a valid Safaricom MSISDN
// (07XXXXXXXX or 01XXXXXXXX).
func IsSafaricomNumber(num string) bool {
	return safaricomRe.MatchString(num)
}

var pinRe = regexp.MustCompile(`^\d{4}$`)

// IsPIN reports whether s is exactly four digits.
func IsPIN(s string) bool {
	return pinRe.MatchString(s)
}

// GenerateUUID generates a UUID v4 string, used for inbound event ids
// when the gateway does not supply one.
func GenerateUUID() string {
	return uuid.New().String()
}

func randomDigits(min, span int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(span))
	return min + n.Int64()
}

// GenerateOrderID generates an order id in the FY'S-XXXXXX format.
func GenerateOrderID() string {
	return fmt.Sprintf("FY'S-%d", randomDigits(100000, 900000))
}

// GenerateReferralCode generates a REFXXXXXX referral code.
func GenerateReferralCode() string {
	return fmt.Sprintf("REF%d", randomDigits(100000, 900000))
}

// GenerateWithdrawalID generates a WD-XXXX withdrawal id.
func GenerateWithdrawalID() string {
	return fmt.Sprintf("WD-%d", randomDigits(1000, 9000))
}

// kenyaTZ is fixed UTC+3; Kenya does not observe DST.
var kenyaTZ = time.FixedZone("EAT", 3*3600)

// FormatKenyaTime renders t in Kenyan local time as YYYY-MM-DD HH:MM:SS.
func FormatKenyaTime(t time.Time) string {
	return t.In(kenyaTZ).Format("2006-01-02 15:04:05")
}

// MaskWhatsAppID partially masks a WhatsApp identity,
// e.g. 254701234567@c.us becomes 25470****7@c.us.
func MaskWhatsAppID(waid string) string {
	at := strings.Index(waid, "@")
	if at == -1 {
		return waid
	}
	phone := waid[:at]
	if len(phone) < 6 {
		return waid
	}
	return phone[:5] + "****" + phone[len(phone)-1:] + "@c.us"
}

// SplitQuoted splits space-delimited fields where a segment wrapped in
// double quotes counts as a single field with embedded spaces. Consumed
// by every admin command parser that accepts quoted arguments.
func SplitQuoted(fields []string) []string {
	var result []string
	var current string
	inQuote := false
	for _, p := range fields {
		switch {
		case !inQuote && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) && len(p) > 1:
			result = append(result, strings.Trim(p, `"`))
		case !inQuote && strings.HasPrefix(p, `"`):
			inQuote = true
			current = strings.TrimPrefix(p, `"`) + " "
		case inQuote && strings.HasSuffix(p, `"`):
			inQuote = false
			current += strings.TrimSuffix(p, `"`)
			result = append(result, strings.TrimSpace(current))
			current = ""
		case inQuote:
			current += p + " "
		default:
			result = append(result, p)
		}
	}
	if inQuote {
		result = append(result, strings.TrimSpace(current))
	}
	return result
}

// ParseAmount converts s to a positive amount, returning ok=false for
// non-numeric or non-positive input.
func ParseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseInt safely converts string to int with a default value.
func ParseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

// FormatAmount renders a KSH amount without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
