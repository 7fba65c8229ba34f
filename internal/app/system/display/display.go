// Package display formats record values for table cells: status badges
// and rupee amounts.
package display

import (
	"math"
	"strconv"
	"strings"
)

// Badge describes how a status renders in the UI.
type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
	Icon  string `json:"icon"`
}

var badges = map[string]Badge{
	"active":    {Class: "bg-green-100 text-green-800", Icon: "check-circle"},
	"inactive":  {Class: "bg-red-100 text-red-800", Icon: "x-circle"},
	"pending":   {Class: "bg-yellow-100 text-yellow-800", Icon: "clock"},
	"verified":  {Class: "bg-green-100 text-green-800", Icon: "check-circle"},
	"rejected":  {Class: "bg-red-100 text-red-800", Icon: "x-circle"},
	"confirmed": {Class: "bg-green-100 text-green-800", Icon: "check-circle"},
	"cancelled": {Class: "bg-red-100 text-red-800", Icon: "x-circle"},
	"new":       {Class: "bg-blue-100 text-blue-800", Icon: "alert-circle"},
	"responded": {Class: "bg-green-100 text-green-800", Icon: "check-circle"},
}

// StatusBadge returns the badge for status. Unknown statuses use the
// pending style but keep their own label.
func StatusBadge(status string) Badge {
	b, ok := badges[strings.ToLower(status)]
	if !ok {
		b = badges["pending"]
	}
	b.Label = Capitalize(status)
	return b
}

var userTypeClasses = map[string]string{
	"admin":  "bg-red-100 text-red-800",
	"agent":  "bg-purple-100 text-purple-800",
	"seller": "bg-green-100 text-green-800",
	"buyer":  "bg-blue-100 text-blue-800",
}

// UserTypeClass returns the CSS class for a user type chip (buyer style
// for unknown types).
func UserTypeClass(userType string) string {
	if c, ok := userTypeClasses[strings.ToLower(userType)]; ok {
		return c
	}
	return userTypeClasses["buyer"]
}

// Capitalize upper-cases the first letter.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatINR renders amount as Indian rupees with lakh/crore grouping and
// no decimals ("₹1,50,00,000"). Nil and zero amounts render as "N/A".
func FormatINR(amount *float64) string {
	if amount == nil || *amount == 0 || math.IsNaN(*amount) {
		return "N/A"
	}
	v := math.Round(*amount)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "₹" + groupIndian(strconv.FormatFloat(v, 'f', 0, 64))
}

// FormatINRValue is FormatINR for a plain value.
func FormatINRValue(amount float64) string {
	return FormatINR(&amount)
}

// groupIndian inserts separators: last three digits, then pairs.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	head, tail := digits[:n-3], digits[n-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
