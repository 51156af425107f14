package boundary

import (
	"fmt"

	"github.com/edp1096/toy-ddmac/pkg/mesh"
	"github.com/edp1096/toy-ddmac/pkg/region"
)

// Condition is a boundary that owns the equations of one or more nodes.
// Mark tags those nodes so that the interior fill of their region skips
// them.
type Condition interface {
	GetName() string
	Mark(lookup region.Lookup) error
}

func mark(lookup region.Lookup, at region.Adjacent, id int) (*mesh.Node, error) {
	_, node, err := region.Resolve(lookup, at)
	if err != nil {
		return nil, err
	}
	if node.OnBoundary() && node.BoundaryID != id {
		return nil, fmt.Errorf("node %v already bound to boundary %d", at, node.BoundaryID)
	}
	node.BoundaryID = id
	return node, nil
}
