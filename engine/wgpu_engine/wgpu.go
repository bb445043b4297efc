// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package wgpu_engine executes renderer recordings on a WebGPU device.
package wgpu_engine

import (
	"fmt"
	"log/slog"
	"math/bits"
	"slices"

	"honnef.co/go/wgpu"

	"honnef.co/go/tilegen/jmath"
	"honnef.co/go/tilegen/mem"
	"honnef.co/go/tilegen/profiler"
	"honnef.co/go/tilegen/renderer"
)

// uploadUsage is the usage of every buffer the engine creates. Storage so a
// debug renderer can bind boxes directly, CopySrc so they can be read back.
var uploadUsage = wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst | wgpu.BufferUsageStorage

type Engine struct {
	Device *wgpu.Device
	pool   bufferPool
	// Buffers stay alive across recordings until a FreeBuffer command
	// returns them to the pool.
	live mem.SortedMap[renderer.ResourceID, *wgpu.Buffer]

	logger *slog.Logger

	// set by NewHeadless
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
}

func New(dev *wgpu.Device, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		Device: dev,
		pool:   bufferPool{free: make(map[poolKey][]*wgpu.Buffer)},
		logger: logger,
	}
}

// RunRecording encodes rec and submits it to queue. Uploads replace whatever
// buffer their proxy had before; freed buffers go back to the pool once the
// submission is queued.
func (eng *Engine) RunRecording(
	queue *wgpu.Queue,
	rec *renderer.Recording,
	label string,
	pgroup profiler.ProfilerGroup,
) {
	pgroup = pgroup.Start("RunRecording")
	defer pgroup.End()

	var freed []renderer.ResourceID
	encoder := eng.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})

	for _, cmd := range rec.Commands {
		switch cmd := cmd.(type) {
		case *renderer.Upload:
			if cmd.Buffer.Size == 0 {
				// Zero-sized writes are invalid; such proxies never get a
				// buffer.
				continue
			}
			data := padUpload(cmd.Data)
			buf := eng.pool.take(uint64(len(data)), cmd.Buffer.Name, eng.Device)
			queue.WriteBuffer(buf, 0, data)
			if old, ok := eng.live.Get(cmd.Buffer.ID); ok {
				eng.pool.give(old)
			}
			eng.live.Insert(cmd.Buffer.ID, buf)

		case *renderer.Clear:
			buf, ok := eng.live.Get(cmd.Buffer.ID)
			if !ok {
				panic(fmt.Sprintf("clearing buffer %q that was never uploaded", cmd.Buffer.Name))
			}
			offset, size := clearRange(cmd, buf.Size())
			encoder.ClearBuffer(buf, offset, size)

		case *renderer.FreeBuffer:
			freed = append(freed, cmd.Buffer.ID)

		default:
			panic(fmt.Sprintf("unhandled type %T", cmd))
		}
	}

	cmdBuf := encoder.Finish(nil)
	encoder.Release()
	queue.Submit(cmdBuf)
	cmdBuf.Release()

	for _, id := range freed {
		if buf, ok := eng.live.Get(id); ok {
			eng.live.Delete(id)
			eng.pool.give(buf)
		}
	}
	eng.logger.Debug("ran recording", "label", label, "commands", len(rec.Commands), "live_buffers", eng.live.Len())
}

// Buffer returns the GPU buffer backing an uploaded proxy, for binding by an
// external renderer. The buffer may be larger than proxy.Size.
func (eng *Engine) Buffer(proxy renderer.BufferProxy) (*wgpu.Buffer, bool) {
	return eng.live.Get(proxy.ID)
}

// LiveBuffers returns the number of buffers currently backing proxies.
func (eng *Engine) LiveBuffers() int { return eng.live.Len() }

// LiveBytes returns the allocated size of all live buffers.
func (eng *Engine) LiveBytes() uint64 {
	var n uint64
	for buf := range eng.live.Values() {
		n += buf.Size()
	}
	return n
}

// PooledBuffers returns the number of idle buffers waiting for reuse.
func (eng *Engine) PooledBuffers() int {
	n := 0
	for _, bufs := range eng.pool.free {
		n += len(bufs)
	}
	return n
}

// Release destroys all pooled and live buffers, and the device if the engine
// created it.
func (eng *Engine) Release() {
	for buf := range eng.live.Values() {
		buf.Release()
	}
	eng.live.Reset()
	eng.pool.release()
	if eng.instance != nil {
		eng.Device.Release()
		eng.adapter.Release()
		eng.instance.Release()
		eng.Device, eng.adapter, eng.instance = nil, nil, nil
	}
}

// padUpload extends data to the 4-byte granularity WriteBuffer requires.
func padUpload(data []byte) []byte {
	size := jmath.AlignUp64(uint64(len(data)), 4)
	if uint64(len(data)) == size {
		return data
	}
	return append(slices.Clip(data), make([]byte, size-uint64(len(data)))...)
}

// clearRange resolves a Clear command against a buffer of bufSize bytes.
func clearRange(c *renderer.Clear, bufSize uint64) (offset, size uint64) {
	if c.Offset > bufSize {
		panic(fmt.Sprintf("clear offset %d beyond buffer %q of %d bytes", c.Offset, c.Buffer.Name, bufSize))
	}
	if c.Size < 0 {
		return c.Offset, bufSize - c.Offset
	}
	if c.Offset+uint64(c.Size) > bufSize {
		panic(fmt.Sprintf("clear of %d bytes at %d overflows buffer %q of %d bytes", c.Size, c.Offset, c.Buffer.Name, bufSize))
	}
	return c.Offset, uint64(c.Size)
}

type poolKey struct {
	size  uint64
	usage wgpu.BufferUsage
}

// bufferPool recycles buffers by rounded size.
type bufferPool struct {
	free map[poolKey][]*wgpu.Buffer
}

// sizeClassBits is the number of mantissa bits kept when rounding sizes.
const sizeClassBits = 1

func (pool *bufferPool) take(size uint64, name string, dev *wgpu.Device) *wgpu.Buffer {
	key := poolKey{poolSizeClass(size, sizeClassBits), uploadUsage}
	if bufs := pool.free[key]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		pool.free[key] = bufs[:len(bufs)-1]
		return buf
	}
	return dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  key.size,
		Usage: key.usage,
	})
}

func (pool *bufferPool) give(buf *wgpu.Buffer) {
	key := poolKey{buf.Size(), buf.Usage()}
	pool.free[key] = append(pool.free[key], buf)
}

func (pool *bufferPool) release() {
	for key, bufs := range pool.free {
		for _, buf := range bufs {
			buf.Release()
		}
		delete(pool.free, key)
	}
}

// poolSizeClass rounds x up to a value whose binary representation has at
// most numBits set bits below the leading one. Sizes up to 1<<numBits share
// the smallest class.
func poolSizeClass(x uint64, numBits uint32) uint64 {
	if x <= 1<<numBits {
		return 1 << numBits
	}
	shift := uint(bits.Len64(x-1)) - uint(numBits) - 1
	return ((x-1)>>shift + 1) << shift
}
