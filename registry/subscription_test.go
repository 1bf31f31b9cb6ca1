package registry

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cc253x/zstack/unpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePacket() unpi.Packet {
	return unpi.Packet{MessageType: unpi.SRESP, Subsystem: unpi.Sys, Command: 2}
}

func TestFIFOFairnessMostRecentWins(t *testing.T) {
	s := NewService()
	pred := MatchOpcode(unpi.SRESP, unpi.Sys, 2)
	a := NewSingleShot(pred)
	b := NewSingleShot(pred)
	s.Subscribe(a)
	s.Subscribe(b)

	s.Notify(samplePacket())

	select {
	case <-b.Done():
	default:
		t.Fatal("expected B, the most recently added subscription, to be fulfilled")
	}
	select {
	case <-a.Done():
		t.Fatal("A should not have been fulfilled")
	default:
	}
}

func TestSingleShotRemovedAfterMatch(t *testing.T) {
	s := NewService()
	pred := MatchOpcode(unpi.SRESP, unpi.Sys, 2)
	a := NewSingleShot(pred)
	s.Subscribe(a)

	s.Notify(samplePacket())
	require.Equal(t, 0, s.Len())

	// Re-notifying must not panic or double-fulfill; nothing is listening.
	s.Notify(samplePacket())
}

func TestPersistentSurvivesRepeatedMatches(t *testing.T) {
	s := NewService()
	pred := MatchOpcode(unpi.AREQ, unpi.Zdo, 202)
	var count int32
	p := NewPersistent(pred, func(unpi.Packet) {
		atomic.AddInt32(&count, 1)
	})
	s.Subscribe(p)

	pkt := unpi.Packet{MessageType: unpi.AREQ, Subsystem: unpi.Zdo, Command: 202}
	for i := 0; i < 5; i++ {
		s.Notify(pkt)
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&count))
	assert.Equal(t, 1, s.Len())
}

func TestUnmatchedPacketIsDropped(t *testing.T) {
	s := NewService()
	s.Subscribe(NewSingleShot(MatchOpcode(unpi.SRESP, unpi.Sys, 1)))
	// Does not match the installed subscription; must not panic.
	s.Notify(unpi.Packet{MessageType: unpi.SRESP, Subsystem: unpi.Mac, Command: 1})
}

func TestListenBeforeWriteNoLostWakeup(t *testing.T) {
	s := NewService()
	pred := MatchOpcode(unpi.SRESP, unpi.Sys, 1)
	sub := NewSingleShot(pred)
	s.Subscribe(sub)

	go func() {
		s.Notify(unpi.Packet{MessageType: unpi.SRESP, Subsystem: unpi.Sys, Command: 1})
	}()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("listener should have woken up without a lost wakeup")
	}
}

func TestDroppedCompletionSlotDoesNotBlockFulfill(t *testing.T) {
	s := NewService()
	pred := MatchOpcode(unpi.SRESP, unpi.Sys, 1)
	sub := NewSingleShot(pred)
	s.Subscribe(sub)
	// Nobody ever reads sub.Done(); Notify must still return promptly.
	done := make(chan struct{})
	go func() {
		s.Notify(unpi.Packet{MessageType: unpi.SRESP, Subsystem: unpi.Sys, Command: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify should not block when the completion slot has no reader")
	}
}
