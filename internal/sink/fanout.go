package sink

import (
	"context"
	"errors"
)

// Fanout combines several sinks into one. Permission is the most permissive
// state across members, so push keeps working as long as any channel is open.
type Fanout []Sink

func (f Fanout) Permission() Permission {
	state := PermissionDenied
	for _, s := range f {
		switch s.Permission() {
		case PermissionGranted:
			return PermissionGranted
		case PermissionDefault:
			state = PermissionDefault
		}
	}
	if len(f) == 0 {
		return PermissionDenied
	}
	return state
}

// RequestPermission prompts every member still in the default state.
func (f Fanout) RequestPermission(ctx context.Context) (Permission, error) {
	var errs []error
	for _, s := range f {
		if s.Permission() != PermissionDefault {
			continue
		}
		if _, err := s.RequestPermission(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return f.Permission(), errors.Join(errs...)
}

// Show delivers to every granted member. One failing member does not stop
// delivery to the others.
func (f Fanout) Show(ctx context.Context, n Note) error {
	var errs []error
	for _, s := range f {
		if s.Permission() != PermissionGranted {
			continue
		}
		if err := s.Show(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
