// Package timezone converts UTC instants to recipient-local wall-clock time.
package timezone

import (
	"log"
	"time"
)

// Resolve converts a UTC instant into the recipient's local time for the
// given IANA zone identifier. Unrecognized identifiers degrade to UTC with
// a logged warning rather than failing the recipient's evaluation.
func Resolve(instant time.Time, zoneID string) time.Time {
	if zoneID == "" {
		log.Printf("Empty timezone identifier, falling back to UTC")
		return instant.UTC()
	}

	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		log.Printf("Unknown timezone %q, falling back to UTC: %v", zoneID, err)
		return instant.UTC()
	}

	return instant.In(loc)
}
