package mt

import "github.com/cc253x/zstack/unpi"

func init() {
	register(Command{Name: "get_device_info", Subsystem: unpi.Util, ID: 0, MessageType: unpi.SREQ})
	register(Command{Name: "led_control", Subsystem: unpi.Util, ID: 10, MessageType: unpi.SREQ})
}

type GetDeviceInfoRequest struct{}

func (GetDeviceInfoRequest) Subsystem() unpi.Subsystem     { return unpi.Util }
func (GetDeviceInfoRequest) CommandID() byte               { return 0 }
func (GetDeviceInfoRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (GetDeviceInfoRequest) Encode() ([]byte, error)       { return nil, nil }

// GetDeviceInfoResponse has a variable-length tail: the number of entries in
// AssocDevicesList is given by NumAssocDevices earlier in the same frame,
// not by a fixed 16-slot table. Decode must read that count before reading
// the list.
type GetDeviceInfoResponse struct {
	Status           CommandStatus
	IEEEAddr         [8]byte
	ShortAddr        uint16
	DeviceType       byte
	DeviceState      byte
	NumAssocDevices  byte
	AssocDevicesList []uint16
}

func (r *GetDeviceInfoResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	var err error
	status, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(status)
	if r.IEEEAddr, err = rd.ReadU8Array(8); err != nil {
		return err
	}
	if r.ShortAddr, err = rd.ReadU16LE(); err != nil {
		return err
	}
	if r.DeviceType, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.DeviceState, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.NumAssocDevices, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.AssocDevicesList, err = rd.ReadU16Array(int(r.NumAssocDevices)); err != nil {
		return err
	}
	return nil
}

// LedMode selects an LED's on/off state for LedControlRequest.
type LedMode byte

const (
	LedOff LedMode = 0
	LedOn  LedMode = 1
)

// LedID values; GlobalDisable turns every LED off and prevents firmware
// from driving them until the radio is reset; Coordinator.SetLED's Disable
// option always uses it, without checking the firmware version.
const (
	LedGlobalDisable byte = 0xFF
	LedDefault       byte = 3
)

type LedControlRequest struct {
	LedID byte
	Mode  LedMode
}

func (LedControlRequest) Subsystem() unpi.Subsystem     { return unpi.Util }
func (LedControlRequest) CommandID() byte               { return 10 }
func (LedControlRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r LedControlRequest) Encode() ([]byte, error) {
	return []byte{r.LedID, byte(r.Mode)}, nil
}

type LedControlResponse struct {
	Status CommandStatus
}

func (r *LedControlResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	s, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(s)
	return nil
}
