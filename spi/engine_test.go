package spi

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var allModes = []Mode{Mode0, Mode1, Mode2, Mode3}

func step(e *Engine) {
	e.Tick()
	e.Latch()
}

// exchange starts an exchange at the end of a cycle and returns the received
// byte and the number of busy cycles.
func exchange(e *Engine, b byte) (byte, int) {
	step(e)
	e.Start(b)
	e.Latch()

	busy := 0
	for e.Busy() {
		busy++
		step(e)

		if busy > 1<<12 {
			Fail("exchange never finished")
		}
	}

	Expect(e.Done()).To(BeTrue())

	return e.RxByte(), busy
}

var _ = Describe("ExchangeCycles", func() {
	It("should follow the divider", func() {
		Expect(ExchangeCycles(0)).To(Equal(17))
		Expect(ExchangeCycles(1)).To(Equal(33))
		Expect(ExchangeCycles(7)).To(Equal(2049))
	})
})

var _ = Describe("Engine", func() {
	It("should reset to the slowest mode 0 configuration", func() {
		e := MakeBuilder().WithDevice(Loopback{}).Build("Engine")

		Expect(e.Mode()).To(Equal(Mode0))
		Expect(e.Divider()).To(Equal(MaxDivider))
		Expect(e.State()).To(Equal(StateIdle))
		Expect(e.Pins().SCK).To(BeFalse())
	})

	for _, mode := range allModes {
		for _, div := range []int{0, 1, 3} {
			It(fmt.Sprintf("should loop a byte back in %s, divider %d", mode, div), func() {
				e := MakeBuilder().
					WithDevice(Loopback{}).
					WithMode(mode).
					WithDivider(div).
					Build("Engine")

				for _, b := range []byte{0x3C, 0xA5, 0x00, 0xFF, 0x81} {
					rx, busy := exchange(e, b)
					Expect(rx).To(Equal(b))
					Expect(busy).To(Equal(ExchangeCycles(div)))
					Expect(e.Pins().SCK).To(Equal(mode.CPOL))
				}
			})
		}
	}

	It("should pulse done for one cycle", func() {
		e := MakeBuilder().WithDevice(Loopback{}).WithDivider(0).Build("Engine")
		exchange(e, 1)

		step(e)
		Expect(e.Done()).To(BeFalse())
	})

	It("should produce sixteen clock edges per byte", func() {
		e := MakeBuilder().WithDevice(Loopback{}).WithDivider(2).Build("Engine")
		step(e)
		e.Start(0x5A)
		e.Latch()

		edges := 0
		last := e.Pins().SCK
		for e.Busy() {
			step(e)
			if e.Pins().SCK != last {
				edges++
				last = e.Pins().SCK
			}
		}

		Expect(edges).To(Equal(EdgesPerByte))
	})

	It("should refuse to start or reconfigure while busy", func() {
		e := MakeBuilder().WithDevice(Loopback{}).Build("Engine")
		e.Start(1)

		Expect(func() { e.Start(2) }).To(Panic())
		Expect(func() { e.Configure(Mode1, 0) }).To(Panic())
	})

	It("should reject an out-of-range divider", func() {
		e := MakeBuilder().WithDevice(Loopback{}).Build("Engine")
		Expect(func() { e.Configure(Mode0, 8) }).To(Panic())
	})

	Context("with a mocked device", func() {
		var (
			mockCtrl *gomock.Controller
			device   *MockDevice
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			device = NewMockDevice(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should drive the device once per cycle", func() {
			e := MakeBuilder().WithDevice(device).WithDivider(0).Build("Engine")
			device.EXPECT().Drive(gomock.Any()).Return(true).
				Times(1 + ExchangeCycles(0))

			step(e)
			e.Start(0x00)
			e.Latch()
			for e.Busy() {
				step(e)
			}

			Expect(e.RxByte()).To(Equal(byte(0xFF)))
		})

		It("should drive the select line", func() {
			e := MakeBuilder().WithDevice(device).Build("Engine")
			device.EXPECT().Drive(Pins{Select: true})

			e.SetSelect(true)
			e.Latch()
			step(e)
		})
	})
})
