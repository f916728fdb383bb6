package models

import "time"

// DeliveryStatus represents the lifecycle state of a delivery record
type DeliveryStatus string

const (
	// DeliveryStatusPending means the record was written before transport confirmation
	DeliveryStatusPending DeliveryStatus = "pending"
	// DeliveryStatusSent means the transport accepted the message
	DeliveryStatusSent DeliveryStatus = "sent"
	// DeliveryStatusDelivered means the transport reported final delivery
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	// DeliveryStatusFailed means the transport reported a terminal failure
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// DeliveryRecord represents one confirmed (or attempted) weekly delivery.
// Records are append-only; only DeliveryStatus changes after creation,
// driven by asynchronous transport callbacks.
type DeliveryRecord struct {
	ID             int64          `json:"id" db:"id"`
	RecipientID    string         `json:"recipient_id" db:"recipient_id"`
	WeekNumber     int            `json:"week_number" db:"week_number"`
	ActionContent  string         `json:"action_content" db:"action_content"`
	SentAt         time.Time      `json:"sent_at" db:"sent_at"`
	DeliveryStatus DeliveryStatus `json:"delivery_status" db:"delivery_status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
