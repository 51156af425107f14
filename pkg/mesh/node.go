package mesh

// NoBoundary is the boundary id of an interior node.
const NoBoundary = -1

// NodeData is the physical state attached to a control volume: the DC
// operating point and the AC result of the last solved frequency.
type NodeData struct {
	Psi     float64 // DC potential
	T       float64 // DC lattice temperature
	Density float64 // Mass density

	PsiAC complex128
	TAC   complex128
}

// Node is a finite-volume control volume.
type Node struct {
	ID           int
	Volume       float64
	GlobalOffset int // First real-part index of this node in the global system
	LocalOffset  int // First real-part index of this node in the local solution buffer
	ProcessorID  int
	BoundaryID   int
	Data         *NodeData
}

func NewNode(id int, volume float64, processorID int, data *NodeData) *Node {
	return &Node{
		ID:          id,
		Volume:      volume,
		ProcessorID: processorID,
		BoundaryID:  NoBoundary,
		Data:        data,
	}
}

func (n *Node) OnBoundary() bool {
	return n.BoundaryID != NoBoundary
}

func (n *Node) OwnedBy(rank int) bool {
	return n.ProcessorID == rank
}

// Owned filters the nodes belonging to rank, keeping their order.
func Owned(nodes []*Node, rank int) []*Node {
	owned := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.OwnedBy(rank) {
			owned = append(owned, n)
		}
	}
	return owned
}
