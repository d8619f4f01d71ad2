package archive

import "time"

// RecordVersion is bumped when BookingRecord changes shape.
const RecordVersion = "1.0"

// BookingRecord is the archived transcript and outcome of one completed booking.
type BookingRecord struct {
	Version      string    `json:"version"`
	SessionID    string    `json:"session_id"`
	BookingID    string    `json:"booking_id"`
	ArchivedAt   time.Time `json:"archived_at"`
	PhoneHash    string    `json:"phone_hash"`
	BarberID     int64     `json:"barber_id"`
	BarberName   string    `json:"barber_name"`
	Service      string    `json:"service"`
	Slot         string    `json:"appointment_time"`
	Channel      string    `json:"channel"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	SessionID    string `json:"session_id"`
	BookingID    string `json:"booking_id"`
	S3Key        string `json:"s3_key"`
	BarberID     int64  `json:"barber_id"`
	Service      string `json:"service"`
	ArchivedAt   string `json:"archived_at"`
	MessageCount int    `json:"message_count"`
}
