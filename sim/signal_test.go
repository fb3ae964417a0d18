package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Signal", func() {
	It("should only expose the staged value after latch", func() {
		s := NewSignal(uint32(3))

		s.Set(4)
		Expect(s.Get()).To(Equal(uint32(3)))
		Expect(s.Next()).To(Equal(uint32(4)))

		s.Latch()
		Expect(s.Get()).To(Equal(uint32(4)))
	})

	It("should hold its value when not set", func() {
		s := NewSignal(true)

		s.Latch()
		s.Latch()

		Expect(s.Get()).To(BeTrue())
	})

	It("should reset both stages", func() {
		s := NewSignal(1)
		s.Set(2)

		s.Reset(5)

		Expect(s.Get()).To(Equal(5))
		Expect(s.Next()).To(Equal(5))
	})
})

var _ = Describe("Synchronizer", func() {
	It("should delay the input by two edges", func() {
		var s Synchronizer

		s.Sample(true)
		s.Latch()
		Expect(s.Out()).To(BeFalse())

		s.Sample(false)
		s.Latch()
		Expect(s.Out()).To(BeTrue())

		s.Latch()
		Expect(s.Out()).To(BeFalse())
	})
})
