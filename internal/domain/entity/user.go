package entity

import (
	"fmt"
	"time"
)

// Role is the closed set of account kinds. Every decision point switches on it
// exhaustively and treats an unknown value as an error.
type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleTherapist, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// TherapistStatus is the registration state of a therapist account.
type TherapistStatus string

const (
	TherapistPending  TherapistStatus = "pending"
	TherapistApproved TherapistStatus = "approved"
	TherapistDenied   TherapistStatus = "denied"
)

type User struct {
	ID     string `json:"id" firestore:"id"`
	Name   string `json:"name" firestore:"name"`
	Email  string `json:"email" firestore:"email"`
	Phone  string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role   Role   `json:"role" firestore:"role"`
	Avatar string `json:"avatar,omitempty" firestore:"avatar,omitempty"`

	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	Online    bool      `json:"online" firestore:"online"`
	LastSeen  time.Time `json:"last_seen,omitempty" firestore:"lastSeen,omitempty"`

	// Therapist-only fields
	TherapistStatus TherapistStatus `json:"therapist_status,omitempty" firestore:"therapistStatus,omitempty"`
	Specialization  string          `json:"specialization,omitempty" firestore:"specialization,omitempty"`
	Bio             string          `json:"bio,omitempty" firestore:"bio,omitempty"`
	SessionRate     float64         `json:"session_rate,omitempty" firestore:"sessionRate,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// CanSignIn reports whether the account may open a session. Therapists need
// an approved registration; the returned reason is shown to the user.
func (u *User) CanSignIn() (bool, string) {
	switch u.Role {
	case RoleClient, RoleAdmin:
		return true, ""
	case RoleTherapist:
		switch u.TherapistStatus {
		case TherapistApproved:
			return true, ""
		case TherapistDenied:
			return false, "Your therapist registration was denied"
		default:
			return false, "Your therapist registration is awaiting approval"
		}
	default:
		return false, "Account has an unknown role"
	}
}

// Bookable reports whether clients may book sessions with this user.
func (u *User) Bookable() bool {
	return u.Role == RoleTherapist && u.TherapistStatus == TherapistApproved
}

// PublicProfile is what other users get to see.
type PublicProfile struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Role           Role    `json:"role"`
	Avatar         string  `json:"avatar,omitempty"`
	AvatarURL      string  `json:"avatar_url,omitempty"`
	Online         bool    `json:"online"`
	Specialization string  `json:"specialization,omitempty"`
	Bio            string  `json:"bio,omitempty"`
	SessionRate    float64 `json:"session_rate,omitempty"`
}

func (u *User) Public() *PublicProfile {
	if u == nil {
		return nil
	}
	return &PublicProfile{
		ID:             u.ID,
		Name:           u.Name,
		Role:           u.Role,
		Avatar:         u.Avatar,
		AvatarURL:      u.AvatarURL,
		Online:         u.Online,
		Specialization: u.Specialization,
		Bio:            u.Bio,
		SessionRate:    u.SessionRate,
	}
}
