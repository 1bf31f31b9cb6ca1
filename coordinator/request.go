package coordinator

import (
	"time"

	"github.com/cc253x/zstack/mt"
	"github.com/cc253x/zstack/registry"
	"github.com/cc253x/zstack/transport"
	"github.com/cc253x/zstack/unpi"
)

// sendRequest encodes req and enqueues it on the duplex writer. Used both
// for fire-and-forget AREQ commands and as the final step of
// requestWithReply, after the listener is already installed.
func sendRequest(d *transport.Duplex, req mt.Request) error {
	payload, err := req.Encode()
	if err != nil {
		return newErrorf(KindInvalidCommand, "encoding %T: %w", req, err)
	}
	packet := unpi.Packet{
		MessageType: req.MessageType(),
		Subsystem:   req.Subsystem(),
		Command:     req.CommandID(),
		Payload:     payload,
	}
	if err := d.Enqueue(packet); err != nil {
		return newError(KindSerialWrite, err)
	}
	return nil
}

// requestWithReply installs the SingleShot listener for req's paired SRESP
// BEFORE enqueueing the write, eliminating the lost-wakeup race where a
// fast reply arrives before the listener would otherwise be registered.
func requestWithReply(d *transport.Duplex, reg *registry.Service, req mt.Request, resp mt.Response, timeout time.Duration) error {
	predicate := registry.MatchOpcode(unpi.SRESP, req.Subsystem(), req.CommandID())
	sub := registry.NewSingleShot(predicate)
	reg.Subscribe(sub)

	if err := sendRequest(d, req); err != nil {
		reg.Unsubscribe(sub)
		return err
	}

	packet, err := awaitSingleShot(reg, sub, timeout)
	if err != nil {
		return err
	}
	if err := resp.Decode(packet.Payload); err != nil {
		return newErrorf(KindInvalidResponse, "decoding %T: %w", resp, err)
	}
	return nil
}

// waitFor blocks for the next inbound packet matching (msgType, subsystem,
// command), independent of any request this process itself sent. It backs
// the startup_from_app -> state_changed_ind follow-up and any other
// AREQ-driven wait.
func waitFor(reg *registry.Service, msgType unpi.MessageType, subsystem unpi.Subsystem, command byte, timeout time.Duration) (unpi.Packet, error) {
	sub := registry.NewSingleShot(registry.MatchOpcode(msgType, subsystem, command))
	reg.Subscribe(sub)
	return awaitSingleShot(reg, sub, timeout)
}

func awaitSingleShot(reg *registry.Service, sub *registry.SingleShot, timeout time.Duration) (unpi.Packet, error) {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case packet, ok := <-sub.Done():
		if !ok {
			return unpi.Packet{}, ErrSubscription
		}
		return packet, nil
	case <-timeoutCh:
		reg.Unsubscribe(sub)
		return unpi.Packet{}, ErrNoResponse
	}
}
