package verification

import "context"

// Generator produces one-time verification codes.
type Generator interface {
	Generate() (string, error)
}

// Sender delivers a verification code to the address on file. Delivery is
// fire-and-forget from the flow's perspective: a failed send is logged, the
// challenge stays valid.
type Sender interface {
	Send(ctx context.Context, email, code string) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(ctx context.Context, email, code string) error

func (f SenderFunc) Send(ctx context.Context, email, code string) error {
	return f(ctx, email, code)
}
