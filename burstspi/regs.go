// Package burstspi provides the burst-capable serial peripheral. It combines
// the serial transfer engine, the transmit and receive queues, and the block
// mover behind a processor-facing register interface.
package burstspi

import "github.com/sarchlab/spidma/sim"

// Register offsets.
const (
	RegControl     uint32 = 0x00
	RegData        uint32 = 0x04
	RegStatus      uint32 = 0x08
	RegChipSelect  uint32 = 0x0C
	RegBurstLength uint32 = 0x10
	RegDMAAddress  uint32 = 0x14
	RegDMAControl  uint32 = 0x18

	// WindowSize is the size of the register window.
	WindowSize uint32 = 0x20
)

// CONTROL bits.
const (
	ControlCPOL         uint32 = 1 << 0
	ControlCPHA         uint32 = 1 << 1
	ControlDividerShift        = 2
	ControlDividerMask  uint32 = 0x7 << ControlDividerShift
)

// STATUS bits.
const (
	StatusBusy    uint32 = 1 << 0
	StatusDone    uint32 = 1 << 1
	StatusTxFull  uint32 = 1 << 2
	StatusTxEmpty uint32 = 1 << 3
	StatusRxFull  uint32 = 1 << 4
	StatusRxEmpty uint32 = 1 << 5
	StatusBurst   uint32 = 1 << 6
	StatusDMABusy uint32 = 1 << 7

	StatusTxCountShift        = 8
	StatusRxCountShift        = 18
	StatusCountMask    uint32 = 0x3ff
)

// CHIP_SELECT bits.
const (
	ChipSelectAssert uint32 = 1 << 0
)

// DMA_CONTROL bits.
const (
	DMAStart     uint32 = 1 << 0
	DMAIngress   uint32 = 1 << 1
	DMAIRQEnable uint32 = 1 << 2
	DMABusy      uint32 = 1 << 3
)

// TxCount extracts the transmit queue occupancy from a STATUS value.
func TxCount(status uint32) int {
	return int(status >> StatusTxCountShift & StatusCountMask)
}

// RxCount extracts the receive queue occupancy from a STATUS value.
func RxCount(status uint32) int {
	return int(status >> StatusRxCountShift & StatusCountMask)
}

// A RegRequest is a register access by the processor.
type RegRequest struct {
	Offset uint32
	Write  bool
	Data   uint32
}

// A RegResponse completes a register access. Ack is false for a write that
// was rejected. Valid is true only in the cycle the response is delivered.
type RegResponse struct {
	Data  uint32
	Ack   bool
	Valid bool
}

// A RegPort carries register accesses between the processor and the
// peripheral. The request is a one-cycle pulse. The response follows the
// cycle after the peripheral handles the request.
type RegPort struct {
	req *sim.Signal[*RegRequest]
	rsp *sim.Signal[RegResponse]
}

// NewRegPort creates an idle port.
func NewRegPort() *RegPort {
	return &RegPort{
		req: sim.NewSignal[*RegRequest](nil),
		rsp: sim.NewSignal(RegResponse{}),
	}
}

// Send stages a request pulse. Sending nil ends the pulse.
func (p *RegPort) Send(req *RegRequest) {
	p.req.Set(req)
}

// Request returns the latched request, if any.
func (p *RegPort) Request() (RegRequest, bool) {
	req := p.req.Get()
	if req == nil {
		return RegRequest{}, false
	}

	return *req, true
}

// Respond stages the response of the cycle.
func (p *RegPort) Respond(rsp RegResponse) {
	p.rsp.Set(rsp)
}

// Response returns the latched response.
func (p *RegPort) Response() RegResponse {
	return p.rsp.Get()
}

// Latch commits both directions of the port.
func (p *RegPort) Latch() {
	p.req.Latch()
	p.rsp.Latch()
}
