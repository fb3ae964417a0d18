package sim

import (
	"log"
	"reflect"
	"sync"
)

// HookPosCycleStart marks the beginning of a cycle, before any tick.
var HookPosCycleStart = &HookPos{Name: "Cycle Start"}

// HookPosCycleEnd marks the end of a cycle, after all the latches.
var HookPosCycleEnd = &HookPos{Name: "Cycle End"}

// A Domain is a synchronous clock domain. All the components in a domain
// advance by one step on every clock edge.
type Domain struct {
	HookableBase

	lock   sync.Mutex
	name   string
	Freq   Freq
	Engine Engine

	components []Component
	latchers   []Latcher

	cycle        uint64
	nextTickTime VTimeInSec
	halted       bool
}

// NewDomain creates a clock domain. The engine can be nil if the domain is
// only stepped directly.
func NewDomain(name string, engine Engine, freq Freq) *Domain {
	return &Domain{
		name:         name,
		Engine:       engine,
		Freq:         freq,
		nextTickTime: -1,
	}
}

// Name returns the name of the domain.
func (d *Domain) Name() string {
	return d.name
}

// Register adds a component to the domain. Components tick in the order of
// registration.
func (d *Domain) Register(c Component) {
	for _, existing := range d.components {
		if existing.Name() == c.Name() {
			log.Panicf("component %s already registered in domain %s",
				c.Name(), d.name)
		}
	}

	d.components = append(d.components, c)
}

// AddLatcher adds a latcher that is not a component, such as a signal shared
// between components.
func (d *Domain) AddLatcher(l Latcher) {
	d.latchers = append(d.latchers, l)
}

// Components returns the components registered in the domain.
func (d *Domain) Components() []Component {
	return d.components
}

// Cycle returns the number of completed cycles.
func (d *Domain) Cycle() uint64 {
	return d.cycle
}

// Step advances the domain by one cycle. It returns true if any component
// made progress.
func (d *Domain) Step() bool {
	d.InvokeHook(HookCtx{Domain: d, Pos: HookPosCycleStart, Item: d.cycle})

	madeProgress := false
	for _, c := range d.components {
		madeProgress = c.Tick() || madeProgress
	}

	for _, c := range d.components {
		c.Latch()
	}

	for _, l := range d.latchers {
		l.Latch()
	}

	d.InvokeHook(HookCtx{Domain: d, Pos: HookPosCycleEnd, Item: d.cycle})
	d.cycle++

	return madeProgress
}

// StepN advances the domain by n cycles regardless of progress.
func (d *Domain) StepN(n int) {
	for i := 0; i < n; i++ {
		d.Step()
	}
}

// Handle runs one cycle when a TickEvent is triggered.
func (d *Domain) Handle(e Event) error {
	switch e.(type) {
	case TickEvent:
		if d.Step() && !d.Halted() {
			d.TickLater()
		}
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// Halt stops the domain from scheduling more ticks, even if components are
// still making progress.
func (d *Domain) Halt() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.halted = true
}

// Resume allows the domain to schedule ticks again.
func (d *Domain) Resume() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.halted = false
}

// Halted tells if the domain is halted.
func (d *Domain) Halted() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.halted
}

// TickLater schedules a tick at the next cycle unless one is already
// scheduled or the domain is halted.
func (d *Domain) TickLater() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.halted {
		return
	}

	if d.Engine == nil {
		log.Panicf("domain %s has no engine", d.name)
	}

	time := d.Freq.NextTick(d.Engine.CurrentTime())
	if d.nextTickTime >= time {
		return
	}

	d.nextTickTime = time
	d.Engine.Schedule(MakeTickEvent(d, time))
}
