package profile

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxGroups is how many challenges a free profile may belong to.
const DefaultMaxGroups = 3

type Profile struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	ClerkID            string    `json:"clerkId" db:"clerk_id"`
	Email              string    `json:"email" db:"email"`
	DisplayName        string    `json:"displayName" db:"display_name"`
	FullName           string    `json:"fullName" db:"full_name"`
	AvatarURL          *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	Bio                *string   `json:"bio,omitempty" db:"bio"`
	MaxGroups          int       `json:"maxGroups" db:"max_groups"`
	SubscriptionStatus string    `json:"subscriptionStatus" db:"subscription_status"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateProfileRequest struct {
	ClerkID     string  `json:"clerkId" validate:"required"`
	Email       string  `json:"email" validate:"omitempty,email"`
	DisplayName string  `json:"displayName" validate:"required,min=1,max=50"`
	FullName    string  `json:"fullName" validate:"max=100"`
	AvatarURL   *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,min=1,max=50"`
	FullName    *string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=280"`
}

// ClerkWebhookEvent is the envelope Clerk posts to /webhooks/clerk.
type ClerkWebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	ProfileImageURL       string              `json:"profile_image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// PrimaryEmail falls back to the first address when no primary is marked.
func (u ClerkUserData) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ToCreateRequest maps a Clerk user onto a new profile. The display name
// falls back to the full name and then the email local part.
func (u ClerkUserData) ToCreateRequest() CreateProfileRequest {
	fullName := joinName(u.FirstName, u.LastName)
	display := u.Username
	if display == "" {
		display = fullName
	}
	email := u.PrimaryEmail()
	if display == "" {
		display = localPart(email)
	}
	if display == "" {
		display = "Streaker"
	}

	req := CreateProfileRequest{
		ClerkID:     u.ID,
		Email:       email,
		DisplayName: display,
		FullName:    fullName,
	}
	if img := u.image(); img != "" {
		req.AvatarURL = &img
	}
	return req
}

func (u ClerkUserData) image() string {
	if u.ImageURL != "" {
		return u.ImageURL
	}
	return u.ProfileImageURL
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

func localPart(email string) string {
	for i, r := range email {
		if r == '@' {
			return email[:i]
		}
	}
	return email
}
