// Package registry implements the predicate-keyed subscription table that
// routes inbound UNPI packets to awaiting requesters (SingleShot) and to
// installed event handlers (Persistent), mirroring the per-frameID
// listener map a simpler single-purpose driver would use but generalized
// to arbitrary predicates and to handlers that never unregister.
package registry

import (
	"container/list"
	"log"
	"sync"

	"github.com/cc253x/zstack/unpi"
)

// Predicate reports whether a packet matches a subscription.
type Predicate func(unpi.Packet) bool

// Subscription is implemented by SingleShot and Persistent.
type Subscription interface {
	matches(unpi.Packet) bool
	fulfill(unpi.Packet)
	// oneShot reports whether a successful match should remove this
	// subscription from the registry.
	oneShot() bool
}

// SingleShot delivers at most one matching packet to Done, then is removed
// from the registry. Constructed with NewSingleShot.
type SingleShot struct {
	predicate Predicate
	done      chan unpi.Packet
}

// NewSingleShot creates a SingleShot subscription with a buffered
// completion channel of capacity 1, so fulfillment never blocks on an
// awaiter that has already given up.
func NewSingleShot(predicate Predicate) *SingleShot {
	return &SingleShot{predicate: predicate, done: make(chan unpi.Packet, 1)}
}

// Done is the channel the registered listener receives the matched packet
// on. It is never closed; callers select on it alongside a timeout.
func (s *SingleShot) Done() <-chan unpi.Packet { return s.done }

func (s *SingleShot) matches(p unpi.Packet) bool { return s.predicate(p) }
func (s *SingleShot) oneShot() bool              { return true }
func (s *SingleShot) fulfill(p unpi.Packet) {
	select {
	case s.done <- p:
	default:
		// Nobody is listening anymore (cancelled or already timed out);
		// treat as delivered per the registry's drop contract.
	}
}

// Persistent invokes Handler on every match and is never removed. Handler
// runs on the caller of Notify (the duplex worker's reader goroutine) and
// must not block indefinitely or re-enter the request path.
type Persistent struct {
	predicate Predicate
	handler   func(unpi.Packet)
}

// NewPersistent creates a Persistent subscription.
func NewPersistent(predicate Predicate, handler func(unpi.Packet)) *Persistent {
	return &Persistent{predicate: predicate, handler: handler}
}

func (p *Persistent) matches(pkt unpi.Packet) bool { return p.predicate(pkt) }
func (p *Persistent) oneShot() bool                { return false }
func (p *Persistent) fulfill(pkt unpi.Packet)      { p.handler(pkt) }

// Service is the subscription registry: a mutex-guarded, most-recently-added
// -first list of subscriptions.
type Service struct {
	mu   sync.Mutex
	subs *list.List
}

// NewService constructs an empty registry.
func NewService() *Service {
	return &Service{subs: list.New()}
}

// Subscribe installs sub at the front of the scan order, so it is
// considered before any subscription already registered.
func (s *Service) Subscribe(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs.PushFront(sub)
}

// Unsubscribe removes sub if present. Used for best-effort cleanup when a
// request_with_reply caller times out.
func (s *Service) Unsubscribe(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for e := s.subs.Front(); e != nil; e = e.Next() {
		if e.Value.(Subscription) == sub {
			s.subs.Remove(e)
			return
		}
	}
}

// Notify scans the registry front-to-back for the first subscription whose
// predicate matches packet. A SingleShot match is removed from the
// registry, then its completion channel is fulfilled outside the lock (the
// one documented exception, since a blocked awaiter must never hold up the
// registry). A Persistent match has its handler invoked while still
// holding the lock, matching the spec's "notify's scan-and-mutate step,
// and a handler invocation" wording literally, and remains registered. A
// packet matching nothing is logged and dropped.
func (s *Service) Notify(packet unpi.Packet) {
	s.mu.Lock()
	for e := s.subs.Front(); e != nil; e = e.Next() {
		sub := e.Value.(Subscription)
		if !sub.matches(packet) {
			continue
		}
		if sub.oneShot() {
			s.subs.Remove(e)
			s.mu.Unlock()
			sub.fulfill(packet)
			return
		}
		sub.fulfill(packet)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	log.Printf("registry: unmatched packet type=%s subsystem=%s command=0x%02x, dropped",
		packet.MessageType, packet.Subsystem, packet.Command)
}

// Len reports the number of currently registered subscriptions, mostly
// useful for tests asserting that timed-out SingleShots get cleaned up.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.Len()
}

// MatchOpcode builds the common predicate used by the request/wait engine:
// a packet whose message type, subsystem and command id all match exactly.
func MatchOpcode(msgType unpi.MessageType, subsystem unpi.Subsystem, command byte) Predicate {
	return func(p unpi.Packet) bool {
		return p.MessageType == msgType && p.Subsystem == subsystem && p.Command == command
	}
}
