package brain

// Connection holds the dense synapse weight matrix from a source part to a
// destination area, plus the plasticity rate applied when the connection's
// synapses are potentiated. The matrix shape is fixed at creation:
// Synapses[i][j] is the weight from source neuron i to destination neuron j.
type Connection struct {
	Source Part
	Dest   *Area

	// Beta is the multiplicative potentiation rate, constant for the
	// connection's lifetime. Resolved at creation: an area source
	// contributes its own rate, a stimulus source inherits the
	// destination's.
	Beta float64

	Synapses [][]float64
}

// NewConnection builds a connection over an already-generated synapse
// matrix. The matrix must have Source.Neurons() rows of Dest.Neurons()
// columns each.
func NewConnection(source Part, dest *Area, synapses [][]float64) *Connection {
	beta := dest.Beta()
	if src, ok := source.(*Area); ok {
		beta = src.Beta()
	}
	return &Connection{
		Source:   source,
		Dest:     dest,
		Beta:     beta,
		Synapses: synapses,
	}
}

// Potentiate multiplies the weight of every synapse from an active source
// neuron to a winning destination neuron by (1 + Beta).
func (c *Connection) Potentiate(active []int, winners []int) {
	factor := 1 + c.Beta
	for _, i := range active {
		row := c.Synapses[i]
		for _, j := range winners {
			row[j] *= factor
		}
	}
}
