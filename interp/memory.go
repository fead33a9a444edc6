package interp

import (
	"encoding/binary"
	"fmt"
)

const (
	// MemorySize is the fixed size of the simulated memory.
	MemorySize = 1 << 20
	// WordSize is the width of one memory word.
	WordSize = 4
)

type OutOfBounds struct {
	Addr  int64
	Width int
}

func (e OutOfBounds) Error() string {
	return fmt.Sprintf("memory access of %d bytes at address %d is out of bounds [0, %d)", e.Width, e.Addr, MemorySize)
}

type OutOfMemory struct {
	Requested int64
	Available int
}

func (e OutOfMemory) Error() string {
	return fmt.Sprintf("cannot grow memory by %d bytes, %d left", e.Requested, e.Available)
}

// Memory is the byte-addressable store behind the backtick operator. Words are
// little-endian. The break starts at zero and only moves up.
type Memory struct {
	data []byte
	brk  int
}

func NewMemory() *Memory {
	return &Memory{data: make([]byte, MemorySize)}
}

func (m *Memory) check(addr int64, width int) error {
	if addr < 0 || addr+int64(width) > int64(len(m.data)) {
		return OutOfBounds{Addr: addr, Width: width}
	}
	return nil
}

func (m *Memory) LoadWord(addr int32) (int32, error) {
	if err := m.check(int64(addr), WordSize); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(m.data[addr:])), nil
}

func (m *Memory) StoreWord(addr int32, v int32) error {
	if err := m.check(int64(addr), WordSize); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], uint32(v))
	return nil
}

func (m *Memory) Load8(addr int32) (byte, error) {
	if err := m.check(int64(addr), 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

func (m *Memory) Store8(addr int32, b byte) error {
	if err := m.check(int64(addr), 1); err != nil {
		return err
	}
	m.data[addr] = b
	return nil
}

// Grow reserves n bytes and returns the address of the first one.
func (m *Memory) Grow(n int32) (int32, error) {
	if n < 0 || int64(m.brk)+int64(n) > int64(len(m.data)) {
		return 0, OutOfMemory{Requested: int64(n), Available: len(m.data) - m.brk}
	}
	old := m.brk
	m.brk += int(n)
	return int32(old), nil
}

// Break is the address the next Grow will return.
func (m *Memory) Break() int32 {
	return int32(m.brk)
}
