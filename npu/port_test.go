package npu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"
)

var _ = Describe("StreamPort", func() {
	var (
		port    Port
		dstPort Port
	)

	BeforeEach(func() {
		engine := sim.NewSerialEngine()
		conn := directconnection.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Conn")

		port = NewStreamPort(nil, 2, 2, "PortA")
		dstPort = NewStreamPort(nil, 2, 2, "PortB")
		conn.PlugIn(port)
		conn.PlugIn(dstPort)
	})

	It("should return its remote name", func() {
		Expect(port.Name()).To(Equal("PortA"))
		Expect(port.AsRemote()).To(Equal(sim.RemotePort("PortA")))
	})

	It("should buffer outgoing beats up to its capacity", func() {
		for i := 0; i < 2; i++ {
			msg := StreamMsgBuilder{}.
				WithSrc(port.AsRemote()).
				WithDst(dstPort.AsRemote()).
				WithData(int8(i)).
				Build()
			Expect(port.Send(msg)).To(BeNil())
		}

		Expect(port.CanSend()).To(BeFalse())

		msg := StreamMsgBuilder{}.
			WithSrc(port.AsRemote()).
			WithDst(dstPort.AsRemote()).
			Build()
		Expect(port.Send(msg)).ToNot(BeNil())
	})

	It("should hand outgoing beats to the connection in order", func() {
		first := StreamMsgBuilder{}.
			WithSrc(port.AsRemote()).
			WithDst(dstPort.AsRemote()).
			WithData(3).
			Build()
		second := StreamMsgBuilder{}.
			WithSrc(port.AsRemote()).
			WithDst(dstPort.AsRemote()).
			WithData(4).
			WithLast(true).
			Build()

		Expect(port.Send(first)).To(BeNil())
		Expect(port.Send(second)).To(BeNil())

		Expect(port.PeekOutgoing()).To(BeIdenticalTo(first))
		Expect(port.RetrieveOutgoing()).To(BeIdenticalTo(first))
		Expect(port.RetrieveOutgoing()).To(BeIdenticalTo(second))
		Expect(port.RetrieveOutgoing()).To(BeNil())
	})

	It("should reject a beat whose source is another port", func() {
		msg := StreamMsgBuilder{}.
			WithSrc("SomeoneElse").
			WithDst(dstPort.AsRemote()).
			Build()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should reject a beat without a destination", func() {
		msg := StreamMsgBuilder{}.
			WithSrc(port.AsRemote()).
			Build()

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should back-pressure deliveries into a full incoming buffer", func() {
		for i := 0; i < 2; i++ {
			msg := StreamMsgBuilder{}.
				WithSrc(dstPort.AsRemote()).
				WithDst(port.AsRemote()).
				WithData(int8(i)).
				Build()
			Expect(port.Deliver(msg)).To(BeNil())
		}

		msg := StreamMsgBuilder{}.
			WithSrc(dstPort.AsRemote()).
			WithDst(port.AsRemote()).
			Build()
		Expect(port.Deliver(msg)).ToNot(BeNil())
	})

	It("should retrieve delivered beats in order", func() {
		first := StreamMsgBuilder{}.
			WithSrc(dstPort.AsRemote()).
			WithDst(port.AsRemote()).
			WithData(7).
			Build()

		Expect(port.Deliver(first)).To(BeNil())
		Expect(port.PeekIncoming()).To(BeIdenticalTo(first))
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(first))
		Expect(port.RetrieveIncoming()).To(BeNil())
	})
})

var _ = Describe("StreamMsg", func() {
	It("should clone with a fresh ID", func() {
		msg := StreamMsgBuilder{}.
			WithSrc("A").
			WithDst("B").
			WithData(-7).
			WithLast(true).
			Build()

		clone := msg.Clone().(*StreamMsg)

		Expect(clone.Data).To(Equal(int8(-7)))
		Expect(clone.Last).To(BeTrue())
		Expect(clone.Meta().Src).To(Equal(sim.RemotePort("A")))
		Expect(clone.ID).ToNot(Equal(msg.ID))
	})
})
