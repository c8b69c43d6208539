package utils

import (
	"fmt"
	"time"
)

// GenerateSaleID creates an id for a new ticket-sale record. Uniqueness rests
// on the nanosecond timestamp; the store never has enough records for that to
// matter.
func GenerateSaleID() string {
	return fmt.Sprintf("ticket-%d", time.Now().UnixNano())
}
