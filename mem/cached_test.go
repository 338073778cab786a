package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/buslink/bus"
	"github.com/sarchlab/buslink/mem"
)

var _ = Describe("CachedResponder", func() {
	var (
		backing *mem.Memory
		c       *mem.CachedResponder
	)

	BeforeEach(func() {
		backing = mem.NewMemory()
		// Small cache for testing: 256B, 2-way, 16B lines.
		config := mem.CacheConfig{
			Size:          256,
			Associativity: 2,
			BlockSize:     16,
			HitLatency:    1,
			MissLatency:   4,
		}
		c = mem.NewCachedResponder(config, backing)
	})

	read := func(addr uint32) bus.Request {
		return bus.Request{
			CycleActive:  true,
			StrobeActive: true,
			ByteEnable:   bus.ByteEnableAll,
			Address:      addr,
		}
	}

	write := func(addr uint32, byteEnable uint8, data uint32) bus.Request {
		return bus.Request{
			CycleActive:  true,
			StrobeActive: true,
			IsWrite:      true,
			ByteEnable:   byteEnable,
			Address:      addr,
			WriteData:    data,
		}
	}

	// run presents req until it is acknowledged and returns the final
	// response plus the number of edges taken.
	run := func(req bus.Request) (bus.Response, int) {
		for edge := 1; ; edge++ {
			resp := c.Respond(req)
			if resp.Acknowledge {
				return resp, edge
			}
		}
	}

	Describe("Read path", func() {
		It("should miss cold and pay the miss latency", func() {
			backing.Write32(0x1000, 0xDEADBEEF)

			resp, edges := run(read(0x1000))
			Expect(resp.ReadData).To(Equal(uint32(0xDEADBEEF)))
			Expect(edges).To(Equal(4))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on resident data with hit latency", func() {
			backing.Write32(0x1000, 0xCAFEBABE)
			run(read(0x1000))

			resp, edges := run(read(0x1000))
			Expect(resp.ReadData).To(Equal(uint32(0xCAFEBABE)))
			Expect(edges).To(Equal(1))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
		})

		It("should hit on a neighboring word in the same line", func() {
			backing.Write32(0x1000, 0x11111111)
			backing.Write32(0x1004, 0x22222222)
			run(read(0x1000))

			resp, _ := run(read(0x1004))
			Expect(resp.ReadData).To(Equal(uint32(0x22222222)))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
		})
	})

	Describe("Write path", func() {
		It("should write-allocate on miss and merge byte lanes", func() {
			backing.Write32(0x1000, 0x11223344)

			_, edges := run(write(0x1000, 0x03, 0xCAFEBABE))
			Expect(edges).To(Equal(4))

			resp, _ := run(read(0x1000))
			Expect(resp.ReadData).To(Equal(uint32(0x1122BABE)))
		})

		It("should keep dirty data out of backing until flushed", func() {
			run(write(0x2000, bus.ByteEnableAll, 0x55667788))

			Expect(backing.Read32(0x2000)).To(Equal(uint32(0)))

			c.Flush()
			Expect(backing.Read32(0x2000)).To(Equal(uint32(0x55667788)))
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})

		It("should write back a dirty victim on eviction", func() {
			// 256B 2-way with 16B lines gives 8 sets; addresses 128B
			// apart share a set, so three of them overflow both ways.
			run(write(0x0000, bus.ByteEnableAll, 0xAAAAAAAA))
			run(read(0x0080))
			run(read(0x0100))

			stats := c.Stats()
			Expect(stats.Evictions).To(BeNumerically(">=", 1))
			Expect(stats.Writebacks).To(Equal(uint64(1)))
			Expect(backing.Read32(0x0000)).To(Equal(uint32(0xAAAAAAAA)))
		})
	})

	Describe("Line boundaries", func() {
		// The bus refuses unaligned addresses, but a directly driven
		// responder must still survive an access whose offset leaves
		// fewer than four bytes to the line end.
		It("should drop write lanes past the line end", func() {
			_, edges := run(write(0x100E, bus.ByteEnableAll, 0xCAFEBABE))
			Expect(edges).To(Equal(4))

			c.Flush()
			Expect(backing.Read8(0x100E)).To(Equal(uint8(0xBE)))
			Expect(backing.Read8(0x100F)).To(Equal(uint8(0xBA)))
			Expect(backing.Read32(0x1010)).To(Equal(uint32(0)))
		})

		It("should read zeros past the line end", func() {
			backing.Write32(0x100C, 0x11223344)

			resp, _ := run(read(0x100E))
			Expect(resp.ReadData).To(Equal(uint32(0x1122)))
		})
	})

	Describe("Latency normalization", func() {
		It("should treat zero latencies as one edge", func() {
			z := mem.NewCachedResponder(mem.CacheConfig{
				Size:          256,
				Associativity: 2,
				BlockSize:     16,
			}, backing)

			Expect(z.Config().HitLatency).To(Equal(uint64(1)))
			Expect(z.Config().MissLatency).To(Equal(uint64(1)))
			Expect(z.Respond(read(0x0)).Acknowledge).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("should drop cached state without writeback", func() {
			run(write(0x3000, bus.ByteEnableAll, 0x99999999))
			c.Reset()

			Expect(backing.Read32(0x3000)).To(Equal(uint32(0)))
			resp, edges := run(read(0x3000))
			Expect(resp.ReadData).To(Equal(uint32(0)))
			Expect(edges).To(Equal(4))
		})
	})
})
