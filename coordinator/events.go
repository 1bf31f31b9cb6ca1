package coordinator

import (
	"log"
	"sync"

	"github.com/cc253x/zstack/mt"
	"github.com/cc253x/zstack/registry"
	"github.com/cc253x/zstack/unpi"
)

// ZigbeeEvent is implemented by every asynchronous network event the
// coordinator's built-in bridges can surface.
type ZigbeeEvent interface {
	isZigbeeEvent()
}

// DeviceJoined reports a brand-new trust-center record for a device; no
// firmware indication this driver subscribes to is mapped to this variant
// today (see DeviceAnnounce), but it remains part of the taxonomy for
// callers and future bridges.
type DeviceJoined struct {
	NetworkAddress uint16
	IEEEAddress    [8]byte
}

func (DeviceJoined) isZigbeeEvent() {}

// DeviceAnnounce reports a ZDP device-announce indication: a device
// (re)announcing its presence, carrying its parent's network address.
// tc_device_index is bridged to this variant, not DeviceJoined; see
// DESIGN.md for why.
type DeviceAnnounce struct {
	NetworkAddress uint16
	IEEEAddress    [8]byte
	ParentAddress  uint16
}

func (DeviceAnnounce) isZigbeeEvent() {}

// NetworkAddress reports a resolved 16-bit network address for a known
// IEEE address.
type NetworkAddress struct {
	NetworkAddress uint16
	IEEEAddress    [8]byte
}

func (NetworkAddress) isZigbeeEvent() {}

// DeviceLeave reports a device leaving the network. Firmware indications
// vary in which address they carry, so exactly one of NetworkAddress or
// IEEEAddress may be nil.
type DeviceLeave struct {
	NetworkAddress *uint16
	IEEEAddress    *[8]byte
}

func (DeviceLeave) isZigbeeEvent() {}

// EventCallback receives every bridged ZigbeeEvent. It runs on the duplex
// worker's reader goroutine and must not block indefinitely or call back
// into the coordinator's request path, which would deadlock the reader.
type EventCallback func(ZigbeeEvent)

// callbackCell holds the currently installed EventCallback behind a mutex
// so SetOnEvent can atomically swap it without disturbing an invocation
// already in flight.
type callbackCell struct {
	mu sync.Mutex
	cb EventCallback
}

func (c *callbackCell) set(cb EventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb = cb
}

func (c *callbackCell) invoke(ev ZigbeeEvent) {
	c.mu.Lock()
	cb := c.cb
	c.mu.Unlock()
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("coordinator: event callback panicked: %v", r)
		}
	}()
	cb(ev)
}

// installEventBridges wires the firmware indications this driver
// understands into cell, via Persistent subscriptions on reg. Handlers
// never re-enter the request path; they only decode and invoke cell.
func installEventBridges(reg *registry.Service, cell *callbackCell) {
	reg.Subscribe(registry.NewPersistent(
		registry.MatchOpcode(unpi.AREQ, unpi.Zdo, 202),
		func(packet unpi.Packet) {
			var ind mt.TcDeviceIndex
			if err := ind.Decode(packet.Payload); err != nil {
				log.Printf("coordinator: malformed tc_device_index: %s", err)
				return
			}
			cell.invoke(DeviceAnnounce{
				NetworkAddress: ind.NetworkAddress,
				IEEEAddress:    ind.ExtendedAddress,
				ParentAddress:  ind.ParentAddress,
			})
		},
	))
}
