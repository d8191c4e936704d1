package extract

import (
	"regexp"
	"strconv"
	"strings"

	"dealerscraper/internal/models"
)

var (
	numberPattern = regexp.MustCompile(`\d[\d,]*`)
	digitsPattern = regexp.MustCompile(`\d+`)
)

// ParseInt reads the first digit group in text, ignoring thousands separators
func ParseInt(text string) models.Int {
	m := numberPattern.FindString(text)
	if m == "" {
		return models.Int{}
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return models.Int{}
	}
	return models.IntOf(n)
}

// FirstDigits reads the first run of digits in text
func FirstDigits(text string) (int, bool) {
	m := digitsPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SmallInt is FirstDigits as an optional value
func SmallInt(text string) models.Int {
	if n, ok := FirstDigits(text); ok {
		return models.IntOf(n)
	}
	return models.Int{}
}

// Capture returns the trimmed first submatch of pattern in text, or ""
func Capture(pattern *regexp.Regexp, text string) string {
	if pattern == nil {
		return ""
	}
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// WeeklyPayment reads the payment amount captured by pattern
func WeeklyPayment(pattern *regexp.Regexp, text string) models.Float {
	m := Capture(pattern, text)
	if m == "" {
		return models.Float{}
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return models.Float{}
	}
	return models.FloatOf(v)
}

// PhoneFromHref strips a tel: scheme in either case
func PhoneFromHref(href string) string {
	href = strings.TrimSpace(href)
	for _, prefix := range []string{"tel:", "Tel:", "TEL:"} {
		href = strings.TrimPrefix(href, prefix)
	}
	return strings.TrimSpace(href)
}

// FindPhone returns the first phone number matched by pattern in text
func FindPhone(pattern *regexp.Regexp, text string) string {
	return Capture(pattern, text)
}

// ContainsAny reports whether text contains any of the needles
func ContainsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// ContainsAnyFold is ContainsAny ignoring case
func ContainsAnyFold(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
