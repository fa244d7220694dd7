package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuthRecordsDestinationAndDiverts(t *testing.T) {
	slots := NewSlots(NewMemoryStore())
	flow := NewAuthFlow(slots)

	out := flow.RequireAuth("/checkout?template=restoran-modern&option=wordpress")

	assert.Equal(t, ActionNavigate, out.Kind)
	assert.Equal(t, "/daftar?redirect=%2Fcheckout%3Ftemplate%3Drestoran-modern%26option%3Dwordpress", out.Route)

	saved, ok := slots.PostAuthRedirect()
	require.True(t, ok)
	assert.Equal(t, "/checkout?template=restoran-modern&option=wordpress", saved)
	assert.Equal(t, StateAnonymous, flow.State())
}

func TestRequireAuthWhileAuthenticated(t *testing.T) {
	slots := NewSlots(NewMemoryStore())
	flow := NewAuthFlow(slots)
	flow.BeginAuth()
	flow.SignedIn()

	out := flow.RequireAuth("/checkout?template=a&option=b")

	assert.Equal(t, ActionNavigate, out.Kind)
	assert.Equal(t, "/checkout?template=a&option=b", out.Route)
	_, ok := slots.PostAuthRedirect()
	assert.False(t, ok, "no diversion slot written when already signed in")
}

func TestSignedInFollowsPostAuthRedirect(t *testing.T) {
	slots := NewSlots(NewMemoryStore())
	flow := NewAuthFlow(slots)
	flow.RequireAuth("/checkout?template=salon-kecantikan&option=custom-dashboard")
	flow.BeginAuth()

	out := flow.SignedIn()

	assert.Equal(t, StateAuthenticated, flow.State())
	assert.Equal(t, ActionNavigate, out.Kind)
	assert.Equal(t, "/checkout?template=salon-kecantikan&option=custom-dashboard", out.Route)

	_, ok := slots.PostAuthRedirect()
	assert.False(t, ok, "redirect slot consumed exactly once")
}

func TestSignedInRedirectPrecedence(t *testing.T) {
	slots := NewSlots(NewMemoryStore())
	flow := NewAuthFlow(slots)

	// Both slots populated: the explicit redirect wins and the checkout
	// selection is left in place.
	slots.SetPostAuthRedirect("/dashboard/website")
	slots.SetPendingCheckout(PendingCheckout{TemplateID: "distro-casual", OptionID: "wordpress"})

	out := flow.SignedIn()

	assert.Equal(t, "/dashboard/website", out.Route)
	_, ok := slots.PendingCheckout()
	assert.True(t, ok)
}

func TestSignedInResumesPendingCheckout(t *testing.T) {
	slots := NewSlots(NewMemoryStore())
	flow := NewAuthFlow(slots)
	slots.SetPendingCheckout(PendingCheckout{TemplateID: "bengkel-motor", OptionID: "html-export"})

	out := flow.SignedIn()

	assert.Equal(t, ActionNavigate, out.Kind)
	assert.Equal(t, "/checkout?template=bengkel-motor&option=html-export", out.Route)

	_, ok := slots.PendingCheckout()
	assert.False(t, ok, "selection slot consumed by the redirect")
}

func TestSignedInDefaultsToDashboard(t *testing.T) {
	flow := NewAuthFlow(NewSlots(NewMemoryStore()))

	out := flow.SignedIn()

	assert.Equal(t, ActionNavigate, out.Kind)
	assert.Equal(t, RouteDashboard, out.Route)
}

func TestAuthFailedKeepsSlotForRetry(t *testing.T) {
	slots := NewSlots(NewMemoryStore())
	flow := NewAuthFlow(slots)
	flow.RequireAuth("/checkout?template=warung-tradisional&option=custom-dashboard")
	flow.BeginAuth()

	out := flow.AuthFailed(errors.New("email belum terdaftar"))

	assert.Equal(t, StateAnonymous, flow.State())
	assert.Equal(t, ActionShowError, out.Kind)
	assert.Equal(t, "email belum terdaftar", out.Message)

	// A later successful sign-in still lands on the saved destination.
	flow.BeginAuth()
	retry := flow.SignedIn()
	assert.Equal(t, "/checkout?template=warung-tradisional&option=custom-dashboard", retry.Route)
}

func TestAuthFailedDefaultMessage(t *testing.T) {
	flow := NewAuthFlow(NewSlots(NewMemoryStore()))
	flow.BeginAuth()

	out := flow.AuthFailed(nil)

	assert.Equal(t, ActionShowError, out.Kind)
	assert.Equal(t, "Gagal memproses login", out.Message)
}

func TestSignedOutReturnsToAnonymous(t *testing.T) {
	flow := NewAuthFlow(NewSlots(NewMemoryStore()))
	flow.BeginAuth()
	flow.SignedIn()

	flow.SignedOut()

	assert.Equal(t, StateAnonymous, flow.State())
}
