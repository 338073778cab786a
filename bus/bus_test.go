package bus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/buslink/bus"
)

// stubMaster drives a fixed request and records delivered responses.
type stubMaster struct {
	req       bus.Request
	responses []bus.Response
}

func (m *stubMaster) Request() bus.Request { return m.req }

func (m *stubMaster) PutResponse(r bus.Response) {
	m.responses = append(m.responses, r)
}

func (m *stubMaster) lastResponse() bus.Response {
	return m.responses[len(m.responses)-1]
}

// delayResponder acknowledges after a fixed number of issued cycles and
// returns a canned read value.
type delayResponder struct {
	latency  int
	readData uint32
	waited   int
}

func (r *delayResponder) Respond(req bus.Request) bus.Response {
	if !req.Issued() {
		r.waited = 0
		return bus.Response{}
	}
	if r.waited < r.latency {
		r.waited++
		return bus.Response{}
	}
	r.waited = 0
	return bus.Response{ReadData: r.readData, Acknowledge: true}
}

var _ = Describe("Bus", func() {
	var (
		master    *stubMaster
		responder *delayResponder
		b         *bus.Bus
	)

	BeforeEach(func() {
		master = &stubMaster{}
		responder = &delayResponder{readData: 0xDEADBEEF}
		b = bus.New("dbus", master, responder)
	})

	issue := func(req bus.Request) {
		master.req = req
	}

	readReq := func(addr uint32) bus.Request {
		return bus.Request{
			CycleActive:  true,
			StrobeActive: true,
			ByteEnable:   bus.ByteEnableAll,
			Address:      addr,
		}
	}

	Describe("Handshake", func() {
		It("should complete a zero-latency transfer in one edge", func() {
			issue(readReq(0x1000))

			Expect(b.Tick()).To(Succeed())

			Expect(master.lastResponse().Acknowledge).To(BeTrue())
			Expect(master.lastResponse().ReadData).To(Equal(uint32(0xDEADBEEF)))
			Expect(b.Outstanding()).To(BeFalse())

			stats := b.Stats()
			Expect(stats.Transfers).To(Equal(uint64(1)))
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Acks).To(Equal(uint64(1)))
			Expect(stats.StallCycles).To(Equal(uint64(0)))
		})

		It("should hold the transfer outstanding until acknowledge", func() {
			responder.latency = 2
			issue(readReq(0x2000))

			Expect(b.Tick()).To(Succeed())
			Expect(master.lastResponse().Acknowledge).To(BeFalse())
			Expect(b.Outstanding()).To(BeTrue())

			Expect(b.Tick()).To(Succeed())
			Expect(master.lastResponse().Acknowledge).To(BeFalse())

			Expect(b.Tick()).To(Succeed())
			Expect(master.lastResponse().Acknowledge).To(BeTrue())
			Expect(b.Outstanding()).To(BeFalse())

			stats := b.Stats()
			Expect(stats.Transfers).To(Equal(uint64(1)))
			Expect(stats.StallCycles).To(Equal(uint64(2)))
			Expect(stats.Acks).To(Equal(uint64(1)))
		})

		It("should count one transfer per issue, not per stalled edge", func() {
			responder.latency = 3
			issue(readReq(0x3000))

			for i := 0; i < 4; i++ {
				Expect(b.Tick()).To(Succeed())
			}

			Expect(b.Stats().Transfers).To(Equal(uint64(1)))
		})

		It("should count idle edges separately", func() {
			issue(bus.Request{})

			Expect(b.Tick()).To(Succeed())
			Expect(b.Tick()).To(Succeed())

			stats := b.Stats()
			Expect(stats.IdleCycles).To(Equal(uint64(2)))
			Expect(stats.Transfers).To(Equal(uint64(0)))
		})

		It("should classify write transfers", func() {
			req := readReq(0x4000)
			req.IsWrite = true
			req.WriteData = 0x12345678
			req.ByteEnable = 0x03
			issue(req)

			Expect(b.Tick()).To(Succeed())

			stats := b.Stats()
			Expect(stats.Writes).To(Equal(uint64(1)))
			Expect(stats.Reads).To(Equal(uint64(0)))
		})

		It("should begin a new transfer on the edge after acknowledge", func() {
			issue(readReq(0x1000))
			Expect(b.Tick()).To(Succeed())

			issue(readReq(0x1004))
			Expect(b.Tick()).To(Succeed())

			stats := b.Stats()
			Expect(stats.Transfers).To(Equal(uint64(2)))
			Expect(stats.Acks).To(Equal(uint64(2)))
		})
	})

	Describe("Protocol violations", func() {
		It("should reject address changes while outstanding", func() {
			responder.latency = 2
			issue(readReq(0x1000))
			Expect(b.Tick()).To(Succeed())

			issue(readReq(0x1004))
			err := b.Tick()
			Expect(err).To(MatchError(bus.ErrUnstableRequest))
		})

		It("should reject write-data changes while outstanding", func() {
			responder.latency = 2
			req := readReq(0x1000)
			req.IsWrite = true
			req.WriteData = 0xAAAA0000
			issue(req)
			Expect(b.Tick()).To(Succeed())

			req.WriteData = 0xBBBB0000
			issue(req)
			Expect(b.Tick()).To(MatchError(bus.ErrUnstableRequest))
		})

		It("should reject a withdrawn request", func() {
			responder.latency = 2
			issue(readReq(0x1000))
			Expect(b.Tick()).To(Succeed())

			issue(bus.Request{})
			Expect(b.Tick()).To(MatchError(bus.ErrWithdrawnRequest))
		})

		It("should reject an unaligned transfer address", func() {
			issue(readReq(0x100E))
			Expect(b.Tick()).To(MatchError(bus.ErrUnalignedAddress))
		})

		It("should label errors with the bus name", func() {
			responder.latency = 1
			issue(readReq(0x1000))
			Expect(b.Tick()).To(Succeed())

			issue(readReq(0x2000))
			err := b.Tick()
			Expect(err.Error()).To(ContainSubstring("dbus"))
		})
	})

	Describe("Request", func() {
		It("should require both cycle and strobe to be issued", func() {
			Expect(bus.Request{CycleActive: true}.Issued()).To(BeFalse())
			Expect(bus.Request{StrobeActive: true}.Issued()).To(BeFalse())
			Expect(bus.Request{CycleActive: true, StrobeActive: true}.Issued()).
				To(BeTrue())
		})
	})
})
