package auth

// Status is the derived authentication state of a single provider.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticated
)

func (s Status) String() string {
	if s == StatusAuthenticated {
		return "Authenticated"
	}
	return "Not Authenticated"
}

// Tracker derives per-provider authentication status from the credential
// store. The store is the only truth source: a provider is authenticated iff
// a structurally valid credential is stored for it. No client-side expiry
// check is performed — token validity is the backend's concern at transfer
// time.
type Tracker struct {
	store Store
}

// NewTracker creates a Tracker reading from the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// StatusOf reports the provider's current status. A corrupt stored credential
// reads as unauthenticated (the store has already evicted it by the time Get
// returns).
func (t *Tracker) StatusOf(provider Provider) Status {
	cred, err := t.store.Get(provider)
	if err != nil || cred == nil {
		return StatusUnauthenticated
	}
	return StatusAuthenticated
}

// Ready reports whether a transfer is permitted: both providers authenticated.
func (t *Tracker) Ready() bool {
	return t.StatusOf(Spotify) == StatusAuthenticated && t.StatusOf(YTMusic) == StatusAuthenticated
}
