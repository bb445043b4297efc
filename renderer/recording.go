// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package renderer records the GPU work needed to hand exported boxes to a
// renderer, independent of any particular graphics API.
package renderer

import (
	"sync/atomic"

	"honnef.co/go/safeish"

	"honnef.co/go/tilegen/primitive"
)

var resourceID atomic.Uint64

func nextResourceID() ResourceID {
	return ResourceID(resourceID.Add(1))
}

type ResourceID uint64

type Recording struct {
	Commands []Command
}

func (rec *Recording) push(cmd Command) {
	rec.Commands = append(rec.Commands, cmd)
}

// Reset drops all commands but keeps the allocated storage.
func (rec *Recording) Reset() {
	clear(rec.Commands)
	rec.Commands = rec.Commands[:0]
}

func (rec *Recording) Upload(name string, data []byte) BufferProxy {
	buf := NewBufferProxy(uint64(len(data)), name)
	rec.push(&Upload{buf, data})
	return buf
}

// UploadAABBs uploads boxes in their in-memory layout, which matches the
// layout of an array of AABB in a storage buffer. The returned proxy's size
// is zero if boxes is empty.
func (rec *Recording) UploadAABBs(name string, boxes []primitive.AABB) BufferProxy {
	return rec.Upload(name, safeish.SliceCast[[]byte](boxes))
}

func (rec *Recording) ClearAll(buf BufferProxy) {
	rec.push(&Clear{buf, 0, -1})
}

func (rec *Recording) Clear(buf BufferProxy, offset uint64, size int64) {
	rec.push(&Clear{buf, offset, size})
}

func (rec *Recording) FreeBuffer(buf BufferProxy) {
	rec.push(&FreeBuffer{buf})
}

func NewBufferProxy(size uint64, name string) BufferProxy {
	id := nextResourceID()
	return BufferProxy{size, id, name}
}

type BufferProxy struct {
	Size uint64
	ID   ResourceID
	Name string
}

type Command interface {
	isCommand()
}

func (*Upload) isCommand()     {}
func (*Clear) isCommand()      {}
func (*FreeBuffer) isCommand() {}

type Upload struct {
	Buffer BufferProxy
	Data   []byte
}

// Clear zeroes Size bytes starting at Offset. A negative Size clears to the
// end of the buffer.
type Clear struct {
	Buffer BufferProxy
	Offset uint64
	Size   int64
}

type FreeBuffer struct {
	Buffer BufferProxy
}
