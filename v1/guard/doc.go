// Package guard provides wrappers that check client state before an action
// runs. RequireSession rejects actions when no session identifier is set and
// RequireLock rejects them when the client lock is not held. Guards never block
// and never retry: a rejected action is not invoked and the sentinel error from
// the errors package is returned as is.
package guard
