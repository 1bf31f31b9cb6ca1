package coordinator

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cc253x/zstack/mt"
	"github.com/cc253x/zstack/registry"
	"github.com/cc253x/zstack/transport"
	"github.com/cc253x/zstack/unpi"
)

// State is one of the coordinator's lifecycle states.
type State int32

const (
	StateCreated State = iota
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarted:
		return "Started"
	case StateStopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// defaultRequestTimeout bounds every request_with_reply call the façade
// issues on the caller's behalf; NV operations and explicit per-call
// timeouts may override it.
const defaultRequestTimeout = 5 * time.Second

// startupAttempts is how many ping/version round-trips Start tries before
// giving up. The original driver does not reset between attempts, and
// neither does this one; see DESIGN.md.
const startupAttempts = 3

// Coordinator is the typed façade over a CC253x radio's MT command set. It
// owns the duplex transport and the subscription registry, and shares both
// with its NV-memory adapter and its built-in event bridges.
type Coordinator struct {
	duplex         *transport.Duplex
	registry       *registry.Service
	callback       *callbackCell
	nv             *NVMemory
	requestTimeout time.Duration

	state   atomic.Int32
	version mt.VersionResponse
}

// New constructs a Coordinator directly over an already-open pair of
// transport halves, mainly for tests; production callers use Open.
func New(read, write transport.Transport, lenType unpi.LenTypeInfo) *Coordinator {
	codec := unpi.NewCodec(lenType)
	reg := registry.NewService()
	duplex := transport.NewDuplex(read, write, codec, reg)
	cb := &callbackCell{}
	installEventBridges(reg, cb)

	c := &Coordinator{
		duplex:         duplex,
		registry:       reg,
		callback:       cb,
		requestTimeout: defaultRequestTimeout,
	}
	c.nv = newNVMemory(duplex, reg, c.requestTimeout)
	return c
}

// Open opens the serial device described by cfg through opener and
// constructs a Coordinator over it in the StateCreated state.
func Open(opener transport.Opener, cfg transport.Config) (*Coordinator, error) {
	read, write, err := opener.Open(cfg)
	if err != nil {
		return nil, newError(KindSerialOpen, err)
	}
	return New(read, write, cfg.LenType), nil
}

// State reports the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// NVMemory exposes the non-volatile memory adapter.
func (c *Coordinator) NVMemory() *NVMemory {
	return c.nv
}

// Start runs the startup handshake: up to startupAttempts ping/version
// round trips, then a startup_from_app request and a best-effort wait for
// the paired state_changed_ind. On success the coordinator transitions to
// StateStarted; on handshake exhaustion it returns ErrCoordinatorOpen and
// stays in StateCreated.
func (c *Coordinator) Start() error {
	if c.State() != StateCreated {
		return newErrorf(KindCoordinatorOpen, "start called in state %s", c.State())
	}

	var lastErr error
	for attempt := 0; attempt < startupAttempts; attempt++ {
		var ping mt.PingResponse
		if err := requestWithReply(c.duplex, c.registry, mt.PingRequest{}, &ping, c.requestTimeout); err != nil {
			lastErr = err
			continue
		}
		var version mt.VersionResponse
		if err := requestWithReply(c.duplex, c.registry, mt.VersionRequest{}, &version, c.requestTimeout); err != nil {
			lastErr = err
			continue
		}
		c.version = version
		c.state.Store(int32(StateStarted))
		c.announceStartupFromApp()
		return nil
	}
	return newError(KindCoordinatorOpen, lastErr)
}

// startupIndicationWait bounds the best-effort wait for state_changed_ind
// after startup_from_app; it does not gate Start's return, so a short,
// fixed bound (rather than requestTimeout) keeps a
// slow or absent indication from holding a log line open indefinitely.
const startupIndicationWait = 2 * time.Second

// announceStartupFromApp issues startup_from_app and, in the background,
// waits for the follow-up state_changed_ind purely for diagnostics. A
// timeout here is tolerated: the handshake already established the radio
// is responsive, so this never blocks Start's return.
func (c *Coordinator) announceStartupFromApp() {
	resp := &mt.StartupFromAppResponse{}
	req := mt.StartupFromAppRequest{StartDelay: 0, Status: 0}
	if err := requestWithReply(c.duplex, c.registry, req, resp, c.requestTimeout); err != nil {
		return
	}
	go func() {
		if _, err := waitFor(c.registry, unpi.AREQ, unpi.Zdo, 192, startupIndicationWait); err != nil {
			log.Printf("coordinator: no state_changed_ind after startup_from_app: %s", err)
		}
	}()
}

// Stop transitions the coordinator to StateStopped and closes the
// underlying transport. The coordinator is not reusable afterward.
func (c *Coordinator) Stop() error {
	c.state.Store(int32(StateStopped))
	if err := c.duplex.Close(); err != nil {
		return newError(KindSerialWrite, err)
	}
	return nil
}

// Version returns the version response captured during Start.
func (c *Coordinator) Version() mt.VersionResponse {
	return c.version
}

// Reset issues a fire-and-forget reset_req.
func (c *Coordinator) Reset(kind mt.ResetType) error {
	return sendRequest(c.duplex, mt.ResetReqRequest{Type: kind})
}

// LEDOption is the façade-level abstraction over led_control's raw led_id
// and mode fields.
type LEDOption int

const (
	LEDDisable LEDOption = iota
	LEDOn
	LEDOff
)

// SetLED maps a LEDOption onto led_control. Disable uses the firmware's
// global-LED-disable id (0xFF); On/Off address the default status LED.
func (c *Coordinator) SetLED(opt LEDOption) error {
	var req mt.LedControlRequest
	switch opt {
	case LEDDisable:
		req = mt.LedControlRequest{LedID: mt.LedGlobalDisable, Mode: mt.LedOff}
	case LEDOn:
		req = mt.LedControlRequest{LedID: mt.LedDefault, Mode: mt.LedOn}
	case LEDOff:
		req = mt.LedControlRequest{LedID: mt.LedDefault, Mode: mt.LedOff}
	default:
		return newErrorf(KindInvalidCommand, "unknown LEDOption %d", opt)
	}
	resp := &mt.LedControlResponse{}
	if err := requestWithReply(c.duplex, c.registry, req, resp, c.requestTimeout); err != nil {
		return err
	}
	return statusError(resp.Status)
}

const channelUpdateScanDuration = 0xFE

// ChangeChannel moves the network to a single channel via a broadcast
// management_network_update_request with a channel_mask selecting only
// that channel.
func (c *Coordinator) ChangeChannel(channel uint8) error {
	if channel < 11 || channel > 26 {
		return ErrInvalidChannel
	}
	req := mt.ManagementNetworkUpdateRequest{
		DestinationAddress:     0xFFFF,
		DestinationAddressMode: uint16(mt.AddressModeBroadcast),
		ChannelMask:            1 << channel,
		ScanDuration:           channelUpdateScanDuration,
	}
	resp := &mt.ManagementNetworkUpdateResponse{}
	if err := requestWithReply(c.duplex, c.registry, req, resp, c.requestTimeout); err != nil {
		return err
	}
	return statusError(resp.Status)
}

// stackTuneTxPowerOperation is the stack_tune sub-operation that sets
// transmit power, per the firmware's monitor-and-test reference.
const stackTuneTxPowerOperation = 0

// SetTransmitPower issues a stack_tune request to set the radio's transmit
// power in dBm.
func (c *Coordinator) SetTransmitPower(dBm int8) error {
	req := mt.StackTuneRequest{Operation: stackTuneTxPowerOperation, Value: dBm}
	resp := &mt.StackTuneResponse{}
	return requestWithReply(c.duplex, c.registry, req, resp, c.requestTimeout)
}

// permitJoinBroadcastAddress is the firmware's conventional "all routers
// and the coordinator" destination for a broadcast permit-join.
const permitJoinBroadcastAddress = 0xFFFC

// PermitJoin opens (or closes, with duration 0) the network to new joins.
// If addr is non-nil, only that device is targeted; otherwise the request
// broadcasts. duration is truncated to whole seconds and must fit a byte.
func (c *Coordinator) PermitJoin(duration time.Duration, addr *uint16) error {
	if c.IsInterPanMode() {
		return ErrInterpanMode
	}
	seconds := duration / time.Second
	if seconds > 255 {
		return ErrDurationTooLong
	}

	req := mt.ManagementPermitJoinRequest{
		TCSignificance: 1,
		Duration:       byte(seconds),
	}
	if addr != nil {
		req.AddressMode = mt.AddressModeShort
		req.DestinationAddress = *addr
	} else {
		req.AddressMode = mt.AddressModeBroadcast
		req.DestinationAddress = permitJoinBroadcastAddress
	}

	resp := &mt.ManagementPermitJoinResponse{}
	if err := requestWithReply(c.duplex, c.registry, req, resp, c.requestTimeout); err != nil {
		return err
	}
	return statusError(resp.Status)
}

// DiscoverRoute issues exit_route_disc toward addr (or the broadcast
// address if nil), optionally bounded by wait instead of the coordinator's
// default request timeout.
func (c *Coordinator) DiscoverRoute(addr *uint16, wait *time.Duration) error {
	dest := uint16(permitJoinBroadcastAddress)
	if addr != nil {
		dest = *addr
	}
	timeout := c.requestTimeout
	if wait != nil {
		timeout = *wait
	}
	req := mt.ExitRouteDiscRequest{DestinationAddress: dest, Radius: mt.DefaultRadius}
	resp := &mt.ExitRouteDiscResponse{}
	if err := requestWithReply(c.duplex, c.registry, req, resp, timeout); err != nil {
		return err
	}
	return statusError(resp.Status)
}

// DeviceInfo queries the radio's own device record.
func (c *Coordinator) DeviceInfo() (*mt.GetDeviceInfoResponse, error) {
	resp := &mt.GetDeviceInfoResponse{}
	if err := requestWithReply(c.duplex, c.registry, mt.GetDeviceInfoRequest{}, resp, c.requestTimeout); err != nil {
		return nil, err
	}
	if err := statusError(resp.Status); err != nil {
		return nil, err
	}
	return resp, nil
}

// SetOnEvent atomically replaces the callback invoked by the built-in
// event bridges; passing nil stops delivering events.
func (c *Coordinator) SetOnEvent(cb EventCallback) {
	c.callback.set(cb)
}

// IsInterPanMode reports whether the radio is currently in Inter-PAN mode.
// No command in the catalog this driver implements toggles that mode, so
// this always reports false; the hook exists so PermitJoin's guard-rail is
// in place once such a command is added.
func (c *Coordinator) IsInterPanMode() bool {
	return false
}

func statusError(status mt.CommandStatus) error {
	if status.OK() {
		return nil
	}
	return newError(KindCommandStatusFailure, fmt.Errorf("%s", status))
}
