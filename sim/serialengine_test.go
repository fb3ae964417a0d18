package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type endRecorder struct {
	at []VTimeInSec
}

func (r *endRecorder) Handle(now VTimeInSec) {
	r.at = append(r.at, now)
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run events in time order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewEventBase(4, handler)
		evt2 := NewEventBase(2, handler)
		evt3 := NewEventBase(3, handler)

		gomock.InOrder(
			handler.EXPECT().Handle(evt2).DoAndReturn(func(Event) error {
				engine.Schedule(evt3)
				return nil
			}),
			handler.EXPECT().Handle(evt3),
			handler.EXPECT().Handle(evt1),
		)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(4)))
	})

	It("should run simultaneous events in schedule order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewEventBase(1, handler)
		evt2 := NewEventBase(1, handler)

		gomock.InOrder(
			handler.EXPECT().Handle(evt1),
			handler.EXPECT().Handle(evt2),
		)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
	})

	It("should stop at the first error", func() {
		handler := NewMockHandler(mockCtrl)
		failure := errors.New("failure")
		evt1 := NewEventBase(1, handler)
		evt2 := NewEventBase(2, handler)

		handler.EXPECT().Handle(evt1).Return(failure)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(MatchError(failure))
		Expect(engine.queue.Len()).To(Equal(1))
	})

	It("should invoke hooks around events", func() {
		handler := NewMockHandler(mockCtrl)
		hook := NewMockHook(mockCtrl)
		evt := NewEventBase(1, handler)
		engine.AcceptHook(hook)

		gomock.InOrder(
			hook.EXPECT().Func(HookCtx{
				Domain: engine, Pos: HookPosBeforeEvent, Item: evt}),
			handler.EXPECT().Handle(evt),
			hook.EXPECT().Func(HookCtx{
				Domain: engine, Pos: HookPosAfterEvent, Item: evt}),
		)

		engine.Schedule(evt)
		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling in the past", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any())
		engine.Schedule(NewEventBase(2, handler))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(NewEventBase(1, handler))
		}).To(Panic())
	})

	It("should call end handlers when finished", func() {
		r := &endRecorder{}
		engine.RegisterSimulationEndHandler(r)

		engine.Finished()

		Expect(r.at).To(Equal([]VTimeInSec{0}))
	})

	It("should reject duplicated hooks", func() {
		hook := NewMockHook(mockCtrl)
		engine.AcceptHook(hook)

		Expect(func() { engine.AcceptHook(hook) }).To(Panic())
		Expect(engine.NumHooks()).To(Equal(1))
	})
})

var _ = Describe("EventQueue", func() {
	It("should peek the earliest event", func() {
		q := NewEventQueue()
		late := NewEventBase(2, nil)
		early := NewEventBase(1, nil)
		q.Push(late)
		q.Push(early)

		Expect(q.Peek()).To(BeIdenticalTo(early))
		Expect(q.Len()).To(Equal(2))
		Expect(q.Pop()).To(BeIdenticalTo(early))
		Expect(q.Pop()).To(BeIdenticalTo(late))
	})
})

var _ = Describe("IDGenerator", func() {
	It("should generate distinct IDs", func() {
		g := GetIDGenerator()

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})

	It("should not switch generators after use", func() {
		GetIDGenerator()

		Expect(func() { UseParallelIDGenerator() }).To(Panic())
	})
})
