package clmm

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// EventKind enumerates the state-changing operations the core reports to
// the external event sink. The core never writes history directly; it
// only ever emits one of these.
type EventKind string

const (
	EventCreatedPool        EventKind = "CreatedPool"
	EventMintedPosition     EventKind = "MintedPosition"
	EventIncreasedLiquidity EventKind = "IncreasedLiquidity"
	EventDecreasedLiquidity EventKind = "DecreasedLiquidity"
	EventBurntPosition      EventKind = "BurntPosition"
	EventCollectedFees      EventKind = "CollectedFees"
	EventSwapped            EventKind = "Swapped"
)

// Event is the self-contained record the core hands to the sink after
// every state-changing call. ID and Timestamp are stamped by NewEvent when
// the shell emits the event; ModifyLiquidity and Swap themselves never
// read wall-clock time or generate randomness mid-operation.
type Event struct {
	ID        uuid.UUID      `cbor:"0,keyasint"`
	Kind      EventKind      `cbor:"1,keyasint"`
	Timestamp time.Time      `cbor:"2,keyasint"`
	PoolID    PoolId         `cbor:"3,keyasint"`
	Principal common.Address `cbor:"4,keyasint"`

	TickLower *int32 `cbor:"5,keyasint,omitempty"`
	TickUpper *int32 `cbor:"6,keyasint,omitempty"`

	Amount0        *uint256.Int `cbor:"7,keyasint,omitempty"`
	Amount1        *uint256.Int `cbor:"8,keyasint,omitempty"`
	LiquidityDelta *int128      `cbor:"9,keyasint,omitempty"`

	SqrtPriceX96After *uint256.Int `cbor:"10,keyasint,omitempty"`
	TickAfter         *int32       `cbor:"11,keyasint,omitempty"`
}

// NewEvent stamps a fresh event ID and timestamp, matching how the
// teacher's replayed chain events are keyed by a tx hash assigned outside
// the simulator itself.
func NewEvent(kind EventKind, poolID PoolId, principal common.Address) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Timestamp: time.Now(),
		PoolID:    poolID,
		Principal: principal,
	}
}

// EventSink is the external collaborator that receives and durably
// records events; the core only ever produces Event values; it never
// calls a sink method, so this interface exists purely to document the
// shell-side contract.
type EventSink interface {
	Record(Event) error
}
