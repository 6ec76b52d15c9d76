package heap

import "github.com/gc-research/tracebench/internal/cmn"

var (
	_ ObjectModel = (*OpenJDKModel)(nil)
	_ ObjectModel = (*BidirectionalModel)(nil)
)

// Kind names the object-model variants selectable from the CLI.
type Kind string

const (
	OpenJDK                Kind = "OpenJDK"
	OpenJDKAE              Kind = "OpenJDKAE"
	Bidirectional          Kind = "Bidirectional"
	BidirectionalFallback  Kind = "BidirectionalFallback"
)

// New constructs the object model named by kind.
func New(kind Kind) (ObjectModel, error) {
	switch kind {
	case OpenJDK:
		return NewOpenJDKModel(false), nil
	case OpenJDKAE:
		return NewOpenJDKModel(true), nil
	case Bidirectional:
		return NewBidirectionalModel(true), nil
	case BidirectionalFallback:
		return NewBidirectionalModel(false), nil
	default:
		return nil, cmn.NewError(cmn.InvalidArgs, "unknown object model %q", kind)
	}
}
