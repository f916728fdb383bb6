package models

import "time"

// ProgramLengthWeeks is the total number of weekly deliveries in the program.
const ProgramLengthWeeks = 12

// Recipient represents an enrolled participant's program state
type Recipient struct {
	ID             string     `json:"id" db:"id"` // Opaque identifier, stable for recipient lifetime
	Email          string     `json:"email" db:"email"`
	Timezone       string     `json:"timezone" db:"timezone"` // IANA zone identifier, set at enrollment
	GoalsText      string     `json:"goals_text" db:"goals_text"`
	CurrentWeek    int        `json:"current_week" db:"current_week"` // 0 = enrolled, 12 = program complete
	LastDeliveryAt *time.Time `json:"last_delivery_at" db:"last_delivery_at"`
	Active         bool       `json:"active" db:"active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the recipient has received all program weeks
func (r *Recipient) Completed() bool {
	return r.CurrentWeek >= ProgramLengthWeeks
}
