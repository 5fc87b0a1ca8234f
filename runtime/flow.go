package runtime

// FlowKind discriminates a non-local control effect surfacing out of the
// tree-walking executor (spec §4.E execution model: "None | Return | Break |
// Continue | Throw").
type FlowKind uint8

const (
	FlowNone FlowKind = iota
	FlowReturn
	FlowBreak
	FlowContinue
	FlowThrow
)

// Flow carries the zero-or-one Value that rides along with a non-local
// control effect (the returned/thrown value; Break/Continue carry none).
type Flow struct {
	Kind  FlowKind
	Value Value
}

var noFlow = Flow{Kind: FlowNone}
