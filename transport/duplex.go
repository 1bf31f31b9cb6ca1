package transport

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net"
	"sync"

	"github.com/cc253x/zstack/unpi"
	"golang.org/x/sync/errgroup"

	"github.com/cc253x/zstack/registry"
)

// ErrClosed is returned by Enqueue once the duplex worker has shut down.
var ErrClosed = errors.New("transport: duplex worker closed")

// outboundCapacity bounds the writer's backlog; a caller that floods the
// link faster than the writer can drain it blocks on Enqueue rather than
// growing memory without bound.
const outboundCapacity = 20

// readScratchSize is the size of each individual Read call's buffer;
// frames are reassembled across calls by the rolling accumulator.
const readScratchSize = 256

// Duplex owns a pair of Transport halves and the two goroutines that bridge
// them to UNPI frames: a reader that accumulates bytes into complete
// packets and dispatches them to a subscription registry, and a writer
// that drains an outbound channel onto the wire.
type Duplex struct {
	codec    *unpi.Codec
	read     Transport
	write    Transport
	registry *registry.Service
	outbound chan unpi.Packet

	closeOnce sync.Once
	closed    chan struct{}
	group     *errgroup.Group
}

// NewDuplex starts the reader and writer goroutines and returns
// immediately; errors surface from Close.
func NewDuplex(read, write Transport, codec *unpi.Codec, reg *registry.Service) *Duplex {
	d := &Duplex{
		codec:    codec,
		read:     read,
		write:    write,
		registry: reg,
		outbound: make(chan unpi.Packet, outboundCapacity),
		closed:   make(chan struct{}),
	}
	group, _ := errgroup.WithContext(context.Background())
	d.group = group
	group.Go(d.readLoop)
	group.Go(d.writeLoop)
	return d
}

// Enqueue submits packet for the writer goroutine to encode and send. It
// blocks while the outbound channel is full and returns ErrClosed once the
// duplex has been closed.
func (d *Duplex) Enqueue(packet unpi.Packet) error {
	select {
	case d.outbound <- packet:
		return nil
	case <-d.closed:
		return ErrClosed
	}
}

// Close shuts down both halves and waits for the reader and writer
// goroutines to exit, returning the first error either encountered (nil on
// a clean shutdown caused by Close itself).
func (d *Duplex) Close() error {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.read.Close()
		d.write.Close()
	})
	return d.group.Wait()
}

func (d *Duplex) readLoop() error {
	buf := make([]byte, 0, unpi.MaxFrameSize*2)
	scratch := make([]byte, readScratchSize)
	for {
		select {
		case <-d.closed:
			return nil
		default:
		}

		n, err := d.read.Read(scratch)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			select {
			case <-d.closed:
				return nil
			default:
			}
			log.Printf("transport: read loop terminating: %s", err)
			return err
		}
		if n == 0 {
			continue
		}
		buf = append(buf, scratch[:n]...)
		buf = d.drainFrames(buf)

		if len(buf) > unpi.MaxFrameSize {
			log.Printf("transport: accumulator exceeded %d bytes without a valid frame, resynchronizing", unpi.MaxFrameSize)
			buf = buf[:0]
		}
	}
}

// drainFrames repeatedly decodes complete frames out of buf, notifying the
// registry for each, and returns whatever bytes remain (a partial frame
// awaiting more data, or nothing).
func (d *Duplex) drainFrames(buf []byte) []byte {
	for {
		idx := bytes.IndexByte(buf, unpi.StartOfFrame)
		if idx < 0 {
			return buf[:0]
		}
		buf = buf[idx:]

		packet, consumed, err := d.codec.Decode(buf)
		if err == nil {
			d.registry.Notify(packet)
			buf = buf[consumed:]
			continue
		}
		if errors.Is(err, unpi.ErrShortBuffer) {
			return buf
		}
		log.Printf("transport: dropping malformed frame: %s", err)
		buf = buf[1:]
	}
}

func (d *Duplex) writeLoop() error {
	for {
		select {
		case packet, ok := <-d.outbound:
			if !ok {
				return nil
			}
			out := make([]byte, d.codec.EncodedSize(len(packet.Payload)))
			n, err := d.codec.Encode(packet, out)
			if err != nil {
				log.Printf("transport: dropping unencodable outbound packet: %s", err)
				continue
			}
			if _, err := d.write.Write(out[:n]); err != nil {
				select {
				case <-d.closed:
					return nil
				default:
				}
				log.Printf("transport: write loop terminating: %s", err)
				return err
			}
		case <-d.closed:
			return nil
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
