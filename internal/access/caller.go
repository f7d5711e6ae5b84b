package access

import (
	"context"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDentist Role = "dentist"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDentist
}

// Caller is the capability handed to every checkup operation: who is asking
// and in which role. It is built once per request by the Policy.
type Caller struct {
	UserID string
	Role   Role
}

func (c Caller) Is(role Role) bool {
	return c.UserID != "" && c.Role == role
}

type ctxKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	return c, ok
}
