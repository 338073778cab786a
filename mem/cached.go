package mem

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/buslink/bus"
)

// CacheConfig holds cache geometry and timing parameters.
type CacheConfig struct {
	// Size in bytes.
	Size int
	// Associativity (number of ways).
	Associativity int
	// BlockSize in bytes (cache line size).
	BlockSize int
	// HitLatency is the number of edges a hit occupies, including the
	// acknowledging edge. A zero value is treated as 1.
	HitLatency uint64
	// MissLatency is the number of edges a miss occupies, including the
	// acknowledging edge. A zero value is treated as 1.
	MissLatency uint64
}

// DefaultCacheConfig returns a small single-level configuration suited to
// the modeled core: 8KB, 2-way, 16B lines.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Size:          8 * 1024,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    1,
		MissLatency:   10,
	}
}

// CacheStatistics holds cache performance counters.
type CacheStatistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// CachedResponder is a bus responder with an L1-style latency model in
// front of a backing Memory. Tag and replacement state is managed by Akita
// cache components; data lives alongside, indexed by set and way. The policy
// is write-allocate with writeback on eviction.
type CachedResponder struct {
	config CacheConfig

	directory *akitacache.DirectoryImpl
	dataStore [][]byte
	backing   *Memory

	// in-flight transfer
	active    bool
	remaining uint64
	readData  uint32

	stats CacheStatistics
}

// NewCachedResponder creates a cached responder over the given backing
// memory. Zero latencies are normalized to one edge.
func NewCachedResponder(config CacheConfig, backing *Memory) *CachedResponder {
	if config.HitLatency == 0 {
		config.HitLatency = 1
	}
	if config.MissLatency == 0 {
		config.MissLatency = 1
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &CachedResponder{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *CachedResponder) Config() CacheConfig {
	return c.config
}

// Stats returns the accumulated cache counters.
func (c *CachedResponder) Stats() CacheStatistics {
	return c.stats
}

// Respond evaluates one clock edge. A newly presented transfer resolves its
// hit or miss immediately (updating tag state and data), then stalls the bus
// for the corresponding latency before acknowledging.
func (c *CachedResponder) Respond(req bus.Request) bus.Response {
	if !req.Issued() {
		c.active = false
		return bus.Response{}
	}

	if !c.active {
		c.active = true
		c.remaining = c.access(req)
	}

	if c.remaining > 1 {
		c.remaining--
		return bus.Response{}
	}

	c.active = false
	return bus.Response{
		ReadData:    c.readData,
		Acknowledge: true,
	}
}

// blockIndex computes the index into dataStore for a block.
func (c *CachedResponder) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// access performs the transfer against the cache state and returns its
// latency in edges.
func (c *CachedResponder) access(req bus.Request) uint64 {
	if req.IsWrite {
		c.stats.Writes++
	} else {
		c.stats.Reads++
	}

	blockAddr := c.blockAlign(req.Address)
	block := c.directory.Lookup(0, uint64(blockAddr))

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		c.touch(block, req)
		return c.config.HitLatency
	}

	c.stats.Misses++
	c.fill(blockAddr, req)
	return c.config.MissLatency
}

// touch applies the transfer to a resident block.
func (c *CachedResponder) touch(block *akitacache.Block, req bus.Request) {
	data := c.dataStore[c.blockIndex(block)]
	offset := req.Address % uint32(c.config.BlockSize)

	if req.IsWrite {
		storeBlockLanes(data, offset, req.ByteEnable, req.WriteData)
		block.IsDirty = true
		return
	}
	c.readData = readBlockWord(data, offset)
}

// fill allocates a block for a missing transfer, writing back the victim if
// dirty, then applies the transfer to the fresh block.
func (c *CachedResponder) fill(blockAddr uint32, req bus.Request) {
	victim := c.directory.FindVictim(uint64(blockAddr))
	if victim == nil {
		return
	}

	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty {
			c.stats.Writebacks++
			c.writeBack(uint32(victim.Tag), victimData)
		}
	}

	for i := 0; i < c.config.BlockSize; i++ {
		victimData[i] = c.backing.Read8(blockAddr + uint32(i))
	}

	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	c.touch(victim, req)
}

// writeBack flushes one block's bytes to the backing memory.
func (c *CachedResponder) writeBack(blockAddr uint32, data []byte) {
	for i, b := range data {
		c.backing.Write8(blockAddr+uint32(i), b)
	}
}

// Flush writes back all dirty blocks and invalidates the cache.
func (c *CachedResponder) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
				c.writeBack(uint32(block.Tag), c.dataStore[c.blockIndex(block)])
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback and clears counters.
func (c *CachedResponder) Reset() {
	c.directory.Reset()
	c.stats = CacheStatistics{}
	c.active = false
	c.remaining = 0
	c.readData = 0
}

// blockAlign rounds addr down to its cache line.
func (c *CachedResponder) blockAlign(addr uint32) uint32 {
	return addr / uint32(c.config.BlockSize) * uint32(c.config.BlockSize)
}

// storeBlockLanes writes the enabled byte lanes of data into a block.
// Lanes falling past the line end are dropped; a word-aligned address never
// produces them.
func storeBlockLanes(block []byte, offset uint32, byteEnable uint8, data uint32) {
	for lane := uint32(0); lane < 4; lane++ {
		if offset+lane >= uint32(len(block)) {
			break
		}
		if byteEnable&(1<<lane) == 0 {
			continue
		}
		block[offset+lane] = byte(data >> (8 * lane))
	}
}

// readBlockWord extracts the little-endian word at offset from a block.
// Bytes past the line end read as zero.
func readBlockWord(block []byte, offset uint32) uint32 {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		if offset+i >= uint32(len(block)) {
			break
		}
		v |= uint32(block[offset+i]) << (8 * i)
	}
	return v
}
