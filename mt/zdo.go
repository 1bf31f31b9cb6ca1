package mt

import "github.com/cc253x/zstack/unpi"

func init() {
	register(Command{Name: "management_permit_join_request", Subsystem: unpi.Zdo, ID: 54, MessageType: unpi.SREQ})
	register(Command{Name: "management_network_update_request", Subsystem: unpi.Zdo, ID: 55, MessageType: unpi.SREQ})
	register(Command{Name: "startup_from_app", Subsystem: unpi.Zdo, ID: 64, MessageType: unpi.SREQ})
	register(Command{Name: "exit_route_disc", Subsystem: unpi.Zdo, ID: 69, MessageType: unpi.SREQ})
	register(Command{Name: "state_changed_ind", Subsystem: unpi.Zdo, ID: 192, MessageType: unpi.AREQ})
	register(Command{Name: "tc_device_index", Subsystem: unpi.Zdo, ID: 202, MessageType: unpi.AREQ})
}

// AddressMode selects how ManagementPermitJoinRequest's destination address
// should be interpreted by the firmware.
type AddressMode uint16

const (
	AddressModeShort     AddressMode = 2
	AddressModeBroadcast AddressMode = 15
)

type ManagementPermitJoinRequest struct {
	AddressMode        AddressMode
	DestinationAddress uint16
	Duration           byte
	TCSignificance     byte
}

func (ManagementPermitJoinRequest) Subsystem() unpi.Subsystem     { return unpi.Zdo }
func (ManagementPermitJoinRequest) CommandID() byte               { return 54 }
func (ManagementPermitJoinRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r ManagementPermitJoinRequest) Encode() ([]byte, error) {
	mode := uint16(r.AddressMode)
	return []byte{
		byte(mode), byte(mode >> 8),
		byte(r.DestinationAddress), byte(r.DestinationAddress >> 8),
		r.Duration,
		r.TCSignificance,
	}, nil
}

type ManagementPermitJoinResponse struct {
	Status CommandStatus
}

func (r *ManagementPermitJoinResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	s, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(s)
	return nil
}

type ManagementNetworkUpdateRequest struct {
	DestinationAddress     uint16
	DestinationAddressMode uint16
	ChannelMask            uint32
	ScanDuration           byte
	ScanCount              byte
	NetworkManagerAddress  uint16
}

func (ManagementNetworkUpdateRequest) Subsystem() unpi.Subsystem     { return unpi.Zdo }
func (ManagementNetworkUpdateRequest) CommandID() byte               { return 55 }
func (ManagementNetworkUpdateRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r ManagementNetworkUpdateRequest) Encode() ([]byte, error) {
	return []byte{
		byte(r.DestinationAddress), byte(r.DestinationAddress >> 8),
		byte(r.DestinationAddressMode), byte(r.DestinationAddressMode >> 8),
		byte(r.ChannelMask), byte(r.ChannelMask >> 8), byte(r.ChannelMask >> 16), byte(r.ChannelMask >> 24),
		r.ScanDuration,
		r.ScanCount,
		byte(r.NetworkManagerAddress), byte(r.NetworkManagerAddress >> 8),
	}, nil
}

type ManagementNetworkUpdateResponse struct {
	Status CommandStatus
}

func (r *ManagementNetworkUpdateResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	s, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(s)
	return nil
}

type StartupFromAppRequest struct {
	StartDelay uint16
	Status     byte
}

func (StartupFromAppRequest) Subsystem() unpi.Subsystem     { return unpi.Zdo }
func (StartupFromAppRequest) CommandID() byte               { return 64 }
func (StartupFromAppRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r StartupFromAppRequest) Encode() ([]byte, error) {
	return []byte{byte(r.StartDelay), byte(r.StartDelay >> 8), r.Status}, nil
}

type StartupFromAppResponse struct {
	Status CommandStatus
}

func (r *StartupFromAppResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	s, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(s)
	return nil
}

type ExitRouteDiscRequest struct {
	DestinationAddress uint16
	Options            byte
	Radius             byte
}

func (ExitRouteDiscRequest) Subsystem() unpi.Subsystem     { return unpi.Zdo }
func (ExitRouteDiscRequest) CommandID() byte               { return 69 }
func (ExitRouteDiscRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r ExitRouteDiscRequest) Encode() ([]byte, error) {
	return []byte{byte(r.DestinationAddress), byte(r.DestinationAddress >> 8), r.Options, r.Radius}, nil
}

type ExitRouteDiscResponse struct {
	Status CommandStatus
}

func (r *ExitRouteDiscResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	s, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(s)
	return nil
}

// StateChangedInd is an AREQ the radio emits whenever its device state
// transitions, notably in response to StartupFromAppRequest.
type StateChangedInd struct {
	State byte
}

func (r *StateChangedInd) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	s, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.State = s
	return nil
}

// DevState values the firmware reports in StateChangedInd;
// DevZbCoordinatorStarted is the state of a coordinator that has started.
// Coordinator.Start waits for the next state_changed_ind without checking
// which state it carries.
const (
	DevStateHoldAtStartDelayed byte = 0x00
	DevStateHoldAtStart        byte = 0x01
	DevZbCoordinatorStarted    byte = 0x09
)

// TcDeviceIndex is an AREQ the trust center emits when a device joins or
// re-announces; see the coordinator package for how this is surfaced as a
// ZigbeeEvent.
type TcDeviceIndex struct {
	NetworkAddress  uint16
	ExtendedAddress [8]byte
	ParentAddress   uint16
}

func (r *TcDeviceIndex) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	var err error
	if r.NetworkAddress, err = rd.ReadU16LE(); err != nil {
		return err
	}
	if r.ExtendedAddress, err = rd.ReadU8Array(8); err != nil {
		return err
	}
	if r.ParentAddress, err = rd.ReadU16LE(); err != nil {
		return err
	}
	return nil
}
