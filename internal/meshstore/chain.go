package meshstore

import (
	"errors"
	"fmt"

	"voxelshapes.ai/internal/mesh"
)

// Chain asks each source in order and returns the first answer that is not
// ErrMeshNotFound.
type Chain []mesh.Source

func (c Chain) Open(name string) ([]byte, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		b, err := s.Open(name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, mesh.ErrMeshNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", name, mesh.ErrMeshNotFound)
}
