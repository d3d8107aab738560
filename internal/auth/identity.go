package auth

import "sync"

// Identity is the session's sign-in outcome. Callbacks registered with
// OnSignedIn run exactly once: immediately if the outcome is already known,
// otherwise when Resolve or Reject is first called.
type Identity struct {
	mu      sync.Mutex
	settled bool
	userID  string
	err     error
	waiters []waiter
}

type waiter struct {
	onSignedIn func(userID string)
	onError    func(err error)
}

func NewIdentity() *Identity {
	return &Identity{}
}

// Resolved returns an Identity already signed in as userID.
func Resolved(userID string) *Identity {
	id := NewIdentity()
	id.Resolve(userID)
	return id
}

// Resolve records a successful sign-in. Later calls are ignored.
func (i *Identity) Resolve(userID string) {
	i.settle(userID, nil)
}

// Reject records a failed sign-in. Later calls are ignored.
func (i *Identity) Reject(err error) {
	i.settle("", err)
}

func (i *Identity) settle(userID string, err error) {
	i.mu.Lock()
	if i.settled {
		i.mu.Unlock()
		return
	}
	i.settled = true
	i.userID = userID
	i.err = err
	waiters := i.waiters
	i.waiters = nil
	i.mu.Unlock()

	for _, w := range waiters {
		w.fire(userID, err)
	}
}

func (i *Identity) OnSignedIn(onSignedIn func(userID string), onError func(err error)) {
	w := waiter{onSignedIn: onSignedIn, onError: onError}
	i.mu.Lock()
	if !i.settled {
		i.waiters = append(i.waiters, w)
		i.mu.Unlock()
		return
	}
	userID, err := i.userID, i.err
	i.mu.Unlock()
	w.fire(userID, err)
}

// UserID is the signed-in id, or "" while pending or after a failure.
func (i *Identity) UserID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.userID
}

func (w waiter) fire(userID string, err error) {
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if w.onSignedIn != nil {
		w.onSignedIn(userID)
	}
}
