package models

// State is the business state the UI is rendered from. It is owned by the UI
// goroutine; background work only ever sees a Snapshot.
type State struct {
	Auth         Field[AuthParams]
	Accounts     Field[Accounts]
	Transactions Field[Transactions]
}

// Snapshot is the immutable part of State a background request needs.
type Snapshot struct {
	AccessToken string
}

func NewState() *State {
	return &State{}
}

// Snapshot captures the data requests are made with.
func (s *State) Snapshot() Snapshot {
	auth, _ := s.Auth.Get()
	return Snapshot{AccessToken: auth.AccessToken}
}

// SignedIn reports whether an access token is available.
func (s *State) SignedIn() bool {
	auth, ok := s.Auth.Get()
	return ok && auth.AccessToken != ""
}
