package domain

import "time"

// User is the backend's identity record. The portal only holds a cached
// copy; the backend mutates it on verification, profile refresh and
// subscription changes.
type User struct {
	ID                   string               `json:"id"`
	Email                string               `json:"email"`
	Name                 string               `json:"name"`
	CompanyName          string               `json:"companyName,omitempty"`
	Role                 string               `json:"role"`
	EmailVerified        bool                 `json:"emailVerified"`
	IsActive             bool                 `json:"isActive"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
	StripeCustomerID     string               `json:"stripeCustomerId,omitempty"`
	SelectedPlanID       string               `json:"selectedPlanId,omitempty"`
	SelectedBillingCycle string               `json:"selectedBillingCycle,omitempty"`
	Subscription         *SubscriptionSummary `json:"subscription,omitempty"`
}

// SubscriptionSummary is the compact subscription view embedded in a User.
type SubscriptionSummary struct {
	Status       SubscriptionStatus `json:"status"`
	PlanID       string             `json:"planId"`
	BillingCycle BillingCycle       `json:"billingCycle"`
}

// TokenPair holds the opaque bearer credentials. Expiry is encoded inside
// the access token; both tokens are replaced atomically on login/refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by login, verify-email and refresh.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterData carries the signup fields, including an optional plan intent
// captured on the pricing page before the signup detour.
type RegisterData struct {
	FullName     string       `json:"fullName"`
	CompanyName  string       `json:"companyName,omitempty"`
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	PlanID       string       `json:"planId,omitempty"`
	BillingCycle BillingCycle `json:"billingCycle,omitempty"`
}

// RegisterAck is the pending-verification acknowledgment after signup.
type RegisterAck struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}
