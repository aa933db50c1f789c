// Package identity is the boundary to the user-administration subsystem.
// Messaging only holds participant ids; display names are resolved through
// the Directory interface so the collaborator can be swapped for a real
// user-service client.
package identity

import (
	"context"
	"strconv"
)

// Directory resolves participant display names.
type Directory interface {
	DisplayName(ctx context.Context, id int64) (string, error)
}

// Static is a config-backed Directory. Unknown ids fall back to a generated
// placeholder name so conversation listings stay renderable.
type Static struct {
	names map[int64]string
}

// NewStatic builds a Static directory from the configured id -> name map.
func NewStatic(names map[int64]string) *Static {
	cp := make(map[int64]string, len(names))
	for k, v := range names {
		cp[k] = v
	}
	return &Static{names: cp}
}

func (s *Static) DisplayName(_ context.Context, id int64) (string, error) {
	if n, ok := s.names[id]; ok {
		return n, nil
	}
	return "user-" + strconv.FormatInt(id, 10), nil
}
