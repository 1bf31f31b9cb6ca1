// Package mt implements the Z-Stack Monitor-and-Test command catalog: one
// Go type per request and per response, each encoding/decoding its own
// wire payload. This is the "type-per-command" catalog design, chosen over
// a runtime parameter-schema table so the request/wait engine can pair a
// request to its response statically.
package mt

import (
	"fmt"

	"github.com/cc253x/zstack/unpi"
)

// Request is implemented by every MT command's request type.
type Request interface {
	Subsystem() unpi.Subsystem
	CommandID() byte
	MessageType() unpi.MessageType
	Encode() ([]byte, error)
}

// Response is implemented by every MT command's response type. Decode
// receives the packet's payload with the UNPI header already stripped.
type Response interface {
	Decode(payload []byte) error
}

// Command describes one catalog entry for name- or opcode-based lookup; the
// typed request path does not consult it.
type Command struct {
	Name        string
	Subsystem   unpi.Subsystem
	ID          byte
	MessageType unpi.MessageType
}

var catalog []Command

func register(c Command) {
	catalog = append(catalog, c)
}

// Lookup finds a catalog entry by subsystem and command id.
func Lookup(subsystem unpi.Subsystem, id byte) (Command, bool) {
	for _, c := range catalog {
		if c.Subsystem == subsystem && c.ID == id {
			return c, true
		}
	}
	return Command{}, false
}

// LookupByName finds a catalog entry by its stable name, e.g. "ping".
func LookupByName(name string) (Command, bool) {
	for _, c := range catalog {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// ErrNoCommandWithName is returned by MustLookupByName when no catalog entry
// matches the given name.
type ErrNoCommandWithName struct{ Name string }

func (e ErrNoCommandWithName) Error() string {
	return fmt.Sprintf("mt: no command named %q", e.Name)
}

// MustLookupByName is a convenience used by tests that turns a missing name
// into ErrNoCommandWithName.
func MustLookupByName(name string) (Command, error) {
	c, ok := LookupByName(name)
	if !ok {
		return Command{}, ErrNoCommandWithName{Name: name}
	}
	return c, nil
}

// DefaultRadius is the network discovery radius used when a route-discovery
// request does not specify one, matching the firmware's own default.
const DefaultRadius = 2 * BeaconMaxDepth

// BeaconMaxDepth bounds the radius implied by the network's maximum beacon
// order; it is the same constant the firmware uses internally.
const BeaconMaxDepth = 0x0f
