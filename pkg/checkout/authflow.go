package checkout

import (
	"fmt"
	"net/url"
)

// AuthState is the client's position in the auth-gated redirect flow.
type AuthState int

const (
	// StateAnonymous — no session; identity-requiring actions record
	// their destination and divert to login.
	StateAnonymous AuthState = iota
	// StateAuthenticating — the identity provider is verifying; this can
	// span a process restart (e.g. an emailed confirmation link).
	StateAuthenticating
	// StateAuthenticated — a session exists.
	StateAuthenticated
)

// AuthFlow is the explicit state machine replacing navigate-from-callback
// auth handling: every transition returns the next action to take.
type AuthFlow struct {
	state AuthState
	slots *Slots
}

// NewAuthFlow starts an anonymous flow over the given slots.
func NewAuthFlow(slots *Slots) *AuthFlow {
	return &AuthFlow{state: StateAnonymous, slots: slots}
}

// State returns the current auth state.
func (f *AuthFlow) State() AuthState {
	return f.state
}

// RequireAuth handles an identity-requiring action while anonymous: the
// intended destination is recorded in the single-slot redirect store
// (overwriting any earlier value) and the user is sent to registration
// with the destination as the redirect parameter.
func (f *AuthFlow) RequireAuth(dest string) Outcome {
	if f.state == StateAuthenticated {
		return Outcome{Kind: ActionNavigate, Route: dest}
	}
	f.slots.SetPostAuthRedirect(dest)
	return Outcome{
		Kind:  ActionNavigate,
		Route: fmt.Sprintf("%s?redirect=%s", RouteRegister, url.QueryEscape(dest)),
	}
}

// BeginAuth marks the provider verification as in flight.
func (f *AuthFlow) BeginAuth() {
	f.state = StateAuthenticating
}

// SignedIn handles the provider's sign-in notification. The redirect
// target resolves in precedence order: the explicit post-auth redirect
// slot, then a pending checkout selection, then the default dashboard.
// Whichever slot supplied the target is consumed, so the redirect happens
// exactly once.
func (f *AuthFlow) SignedIn() Outcome {
	f.state = StateAuthenticated

	if path, ok := f.slots.ConsumePostAuthRedirect(); ok {
		return Outcome{Kind: ActionNavigate, Route: path}
	}
	if pc, ok := f.slots.ConsumePendingCheckout(); ok {
		return Outcome{
			Kind:  ActionNavigate,
			Route: fmt.Sprintf("/checkout?template=%s&option=%s", url.QueryEscape(pc.TemplateID), url.QueryEscape(pc.OptionID)),
		}
	}
	return Outcome{Kind: ActionNavigate, Route: RouteDashboard}
}

// AuthFailed handles a provider error: the flow drops back to anonymous
// and the pending-redirect slot stays intact for a later attempt.
func (f *AuthFlow) AuthFailed(err error) Outcome {
	f.state = StateAnonymous
	msg := "Gagal memproses login"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{Kind: ActionShowError, Message: msg}
}

// SignedOut returns the flow to anonymous.
func (f *AuthFlow) SignedOut() {
	f.state = StateAnonymous
}
