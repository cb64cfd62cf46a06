// Package simbuf provides a small cycle-stamped buffer of 2-bit logic
// values shared between simulation workers.
package simbuf

import (
	"runtime"
	"strings"
	"sync/atomic"
)

// Size is the number of cycles a buffer holds. Cycles wrap modulo Size.
const Size = 12

// ConcurrencyLimit is how many cycles writers may run ahead of readers.
const ConcurrencyLimit = Size - 1

// Logic values. Any value is stored in two bits, so -1 reads back as X.
const (
	Zero int8 = 0
	One  int8 = 1
	X    int8 = 3
)

// Buffer packs Size 2-bit values, four per byte.
type Buffer struct {
	bits  [Size / 4]uint8
	lock  atomic.Bool
	cycle int64
}

// New creates a buffer holding v at every cycle. The cycle starts at -1.
func New(v int8) *Buffer {
	b := &Buffer{cycle: -1}
	b.InitAllValues(v)

	return b
}

func (b *Buffer) lockIt() {
	for !b.lock.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (b *Buffer) unlockIt() {
	b.lock.Store(false)
}

func slot(cycle int64) (addr int, shift uint) {
	i := int(((cycle % Size) + Size) % Size)
	return i / 4, uint(i%4) * 2
}

func (b *Buffer) getBits(cycle int64) int8 {
	addr, shift := slot(cycle)
	return int8((b.bits[addr] >> shift) & 0x3)
}

func (b *Buffer) setBits(cycle int64, v int8) {
	addr, shift := slot(cycle)
	b.bits[addr] = b.bits[addr]&^(0x3<<shift) | (uint8(v)&0x3)<<shift
}

// InitAllValues sets every slot to v and releases the lock.
func (b *Buffer) InitAllValues(v int8) {
	b.lock.Store(false)

	for i := int64(0); i < Size; i++ {
		b.setBits(i, v)
	}
}

// CycleLockFree returns the last written cycle.
func (b *Buffer) CycleLockFree() int64 {
	return b.cycle
}

// UpdateCycleLockFree sets the cycle. It does not check that the cycle
// moves forward.
//
// TODO: decide whether a lower cycle should be ignored here like in
// UpdateValueLockFree; callers currently rely on the overwrite.
func (b *Buffer) UpdateCycleLockFree(c int64) {
	b.cycle = c
}

// ValueLockFree returns the value stored for cycle c.
func (b *Buffer) ValueLockFree(c int64) int8 {
	return b.getBits(c)
}

// UpdateValueLockFree stores v for cycle c if c is newer than the current
// cycle.
func (b *Buffer) UpdateValueLockFree(v int8, c int64) {
	if c > b.cycle {
		b.setBits(c, v)
		b.UpdateCycleLockFree(c)
	}
}

// Cycle returns the last written cycle under the lock.
func (b *Buffer) Cycle() int64 {
	b.lockIt()
	defer b.unlockIt()

	return b.CycleLockFree()
}

// Value returns the value of cycle c under the lock.
func (b *Buffer) Value(c int64) int8 {
	b.lockIt()
	defer b.unlockIt()

	return b.ValueLockFree(c)
}

// UpdateValue stores v for cycle c under the lock.
func (b *Buffer) UpdateValue(v int8, c int64) {
	b.lockIt()
	defer b.unlockIt()

	b.UpdateValueLockFree(v, c)
}

// String renders every slot as 0, 1 or x.
func (b *Buffer) String() string {
	var sb strings.Builder

	for i := int64(0); i < Size; i++ {
		switch b.getBits(i) {
		case Zero:
			sb.WriteByte('0')
		case One:
			sb.WriteByte('1')
		default:
			sb.WriteByte('x')
		}
	}

	return sb.String()
}
