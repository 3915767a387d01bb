// Package remote models the result of a single call to an external service.
package remote

// Kind tags how a remote call ended.
type Kind string

const (
	// KindConfirmed means the call succeeded and the payload was decoded.
	KindConfirmed Kind = "confirmed"
	// KindFailed means the remote side (or the transport) clearly reported a failure.
	KindFailed Kind = "failed"
	// KindAmbiguous means the transport reported success but the payload could not be interpreted.
	KindAmbiguous Kind = "ambiguous"
)

// Outcome is the tagged result of one remote operation.
// Value is only meaningful for confirmed outcomes; for ambiguous outcomes it holds
// whatever could be salvaged from the response.
type Outcome[T any] struct {
	Kind   Kind   `json:"kind"`
	Value  T      `json:"value"`
	Reason string `json:"reason,omitempty"`
	Status int    `json:"status,omitempty"`
}

// Confirmed wraps a decoded payload.
func Confirmed[T any](value T) Outcome[T] {
	return Outcome[T]{Kind: KindConfirmed, Value: value}
}

// Failed builds a failed outcome. status is zero when no response was received.
func Failed[T any](reason string, status int) Outcome[T] {
	return Outcome[T]{Kind: KindFailed, Reason: reason, Status: status}
}

// Ambiguous builds an ambiguous outcome carrying a best-effort payload.
func Ambiguous[T any](bestEffort T, reason string, status int) Outcome[T] {
	return Outcome[T]{Kind: KindAmbiguous, Value: bestEffort, Reason: reason, Status: status}
}

func (o Outcome[T]) IsConfirmed() bool { return o.Kind == KindConfirmed }
func (o Outcome[T]) IsFailed() bool    { return o.Kind == KindFailed }
func (o Outcome[T]) IsAmbiguous() bool { return o.Kind == KindAmbiguous }

// Map converts the payload of an outcome while keeping its tag.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	out := Outcome[U]{Kind: o.Kind, Reason: o.Reason, Status: o.Status}
	if o.Kind != KindFailed {
		out.Value = fn(o.Value)
	}
	return out
}
