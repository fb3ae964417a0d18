package sim

// TickEvent is a generic event that clock domains use to advance one cycle.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker is an object that updates states with ticks. Tick returns false
// only if the object is quiescent and does not need the clock anymore.
type Ticker interface {
	Tick() bool
}

// A Latcher commits the values staged during a tick at the clock edge.
type Latcher interface {
	Latch()
}
