package domain

import "context"

// Transport delivers a message payload to a messaging service.
// Implementations own serialization and network I/O; errors are returned to
// the sender untouched.
type Transport interface {
	Dispatch(ctx context.Context, p Payload) error
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, p Payload) error

func (f TransportFunc) Dispatch(ctx context.Context, p Payload) error { return f(ctx, p) }
