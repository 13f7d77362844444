package feature

// Descriptor is an extracted feature vector tagged with its kind.
type Descriptor struct {
	Kind   Kind
	Vector []float64
}

// Equal reports whether d and other have the same kind and identical components.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Kind != other.Kind || len(d.Vector) != len(other.Vector) {
		return false
	}
	for i := range d.Vector {
		if d.Vector[i] != other.Vector[i] {
			return false
		}
	}
	return true
}

// Dim returns the number of vector components.
func (d Descriptor) Dim() int { return len(d.Vector) }
