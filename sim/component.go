package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is a synchronous element clocked by a Domain. In every cycle,
// all the components of a domain tick first, and then all of them latch.
type Component interface {
	Named
	Hookable
	Ticker
	Latcher
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase
	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the BasicComponent
func (c *ComponentBase) Name() string {
	return c.name
}
