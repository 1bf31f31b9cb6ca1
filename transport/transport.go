// Package transport bridges the byte-level UNPI wire protocol to a
// concrete serial back-end and drives the two cooperating I/O workers
// that move frames on and off it.
package transport

import (
	"io"
	"time"

	"github.com/cc253x/zstack/unpi"
)

// DefaultReadTimeout is the short read timeout the original driver hard-
// codes; promoted here to a Config field rather than a constant so callers
// may override it.
const DefaultReadTimeout = 10 * time.Millisecond

// DefaultBaudRate is the baud rate CC253x coordinators are conventionally
// flashed to answer at.
const DefaultBaudRate = 115200

// Transport is the minimal byte-level duplex the core depends on: open,
// duplicate into independent read/write halves, blocking read with a
// short timeout, blocking write.
type Transport interface {
	io.ReadWriteCloser
}

// Config configures a Transport's underlying serial device.
type Config struct {
	// Path is the serial device path, e.g. "/dev/ttyUSB0" or "COM3". Empty
	// selects the platform default search list.
	Path string
	// BaudRate defaults to DefaultBaudRate when zero.
	BaudRate int
	// ReadTimeout defaults to DefaultReadTimeout when zero.
	ReadTimeout time.Duration
	// LenType selects the one-byte or two-byte UNPI length-field variant;
	// defaults to the CC253x family's one-byte variant.
	LenType unpi.LenTypeInfo
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Opener opens a Config into independent read and write halves of the same
// underlying device.
type Opener interface {
	Open(cfg Config) (readHalf, writeHalf Transport, err error)
}

// ErrSerialOpen wraps the underlying error from an Opener.Open failure.
type ErrSerialOpen struct {
	Path string
	Err  error
}

func (e *ErrSerialOpen) Error() string {
	return "transport: failed to open " + e.Path + ": " + e.Err.Error()
}

func (e *ErrSerialOpen) Unwrap() error { return e.Err }
