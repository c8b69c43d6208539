package utils

import (
	"strconv"
	"strings"
)

// ParseAmount reads a display-formatted yen amount ("1,000"). Anything that
// doesn't parse counts as zero; money fields are free-text in the store.
func ParseAmount(value string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return amount
}

// FormatAmount renders an amount with thousands separators, the form money
// fields are stored in.
func FormatAmount(amount int) string {
	digits := strconv.Itoa(amount)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ",")
}
