package gate

import "context"

// Policy adds resource-level rules (ownership) on top of profile permissions.
type Policy[U any] interface {
	// Can reports whether subject may perform action on resource.
	// resource is nil for list/create checks.
	Can(ctx context.Context, subject U, action Action, resource any) bool
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc[U any] func(ctx context.Context, subject U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, subject U, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}
