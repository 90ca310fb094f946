package entity

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether a booking in status s may move to next.
// Completed and cancelled bookings are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID              string        `json:"id" firestore:"id"`
	ClientID        string        `json:"client_id" firestore:"clientId"`
	ClientName      string        `json:"client_name" firestore:"clientName"`
	TherapistID     string        `json:"therapist_id" firestore:"therapistId"`
	TherapistName   string        `json:"therapist_name" firestore:"therapistName"`
	Date            time.Time     `json:"date" firestore:"date"`
	DurationMinutes int           `json:"duration_minutes" firestore:"durationMinutes"`
	Price           float64       `json:"price" firestore:"price"`
	Status          BookingStatus `json:"status" firestore:"status"`
	Notes           string        `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time     `json:"updated_at" firestore:"updatedAt"`
}

// Involves reports whether userID is the client or the therapist.
func (b *Booking) Involves(userID string) bool {
	return b.ClientID == userID || b.TherapistID == userID
}

// SessionPrice charges rate per hour, pro rata.
func SessionPrice(hourlyRate float64, durationMinutes int) float64 {
	return hourlyRate * float64(durationMinutes) / 60
}
