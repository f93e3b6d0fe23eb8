package entities

// CheckSum reconciles the original stock against the distributed units
type CheckSum struct {
	Original    Quantity
	Distributed Quantity
	Difference  Quantity
	Valid       bool
}

// NewCheckSum builds a CheckSum; Difference is original minus distributed
func NewCheckSum(original, distributed Quantity) CheckSum {
	return CheckSum{
		Original:    original,
		Distributed: distributed,
		Difference:  original - distributed,
		Valid:       original == distributed,
	}
}
