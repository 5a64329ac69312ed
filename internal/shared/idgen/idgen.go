// Package idgen generates the prefixed public identifiers exposed by the API.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Public identifier prefixes.
const (
	PrefixPayment       = "PAY_"
	PrefixPaymentMethod = "PM_"
	PrefixIntent        = "PI_"
	PrefixRefund        = "REF_"
	PrefixWebhook       = "WEB_"
	PrefixCustomer      = "CUST_"
	PrefixOrder         = "ORD_"
)

// New returns prefix followed by n upper-case hex characters.
func New(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return prefix + strings.ToUpper(hex[:n])
}

// Short returns an 8 character identifier with the given prefix.
func Short(prefix string) string {
	return New(prefix, 8)
}

// Order returns a new order identifier.
func Order() string {
	return New(PrefixOrder, 12)
}

// Secret returns an opaque token suitable for client secrets.
func Secret(id string) string {
	return id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
