package mt

import "github.com/cc253x/zstack/unpi"

func init() {
	register(Command{Name: "ping", Subsystem: unpi.Sys, ID: 1, MessageType: unpi.SREQ})
	register(Command{Name: "version", Subsystem: unpi.Sys, ID: 2, MessageType: unpi.SREQ})
	register(Command{Name: "reset_req", Subsystem: unpi.Sys, ID: 0, MessageType: unpi.AREQ})
	register(Command{Name: "stack_tune", Subsystem: unpi.Sys, ID: 15, MessageType: unpi.SREQ})
	register(Command{Name: "osal_nv_length", Subsystem: unpi.Sys, ID: 19, MessageType: unpi.SREQ})
	register(Command{Name: "osal_nv_read", Subsystem: unpi.Sys, ID: 8, MessageType: unpi.SREQ})
	register(Command{Name: "osal_nv_read_ext", Subsystem: unpi.Sys, ID: 28, MessageType: unpi.SREQ})
	register(Command{Name: "osal_nv_write", Subsystem: unpi.Sys, ID: 29, MessageType: unpi.SREQ})
}

// PingRequest carries no fields; the radio replies with its capability mask.
type PingRequest struct{}

func (PingRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (PingRequest) CommandID() byte               { return 1 }
func (PingRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (PingRequest) Encode() ([]byte, error)       { return nil, nil }

type PingResponse struct {
	Capabilities uint16
}

func (r *PingResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	v, err := rd.ReadU16LE()
	if err != nil {
		return err
	}
	r.Capabilities = v
	return nil
}

// VersionRequest carries no fields.
type VersionRequest struct{}

func (VersionRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (VersionRequest) CommandID() byte               { return 2 }
func (VersionRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (VersionRequest) Encode() ([]byte, error)       { return nil, nil }

type VersionResponse struct {
	TransportRev byte
	Product      byte
	MajorRel     byte
	MinorRel     byte
	MaintRel     byte
	Revision     uint32
}

func (r *VersionResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	var err error
	if r.TransportRev, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.Product, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.MajorRel, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.MinorRel, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.MaintRel, err = rd.ReadU8(); err != nil {
		return err
	}
	if r.Revision, err = rd.ReadU32LE(); err != nil {
		return err
	}
	return nil
}

// ResetType selects a hard or soft reset for ResetReqRequest.
type ResetType byte

const (
	ResetHard ResetType = 0
	ResetSoft ResetType = 1
)

// ResetReqRequest is fire-and-forget: the radio does not send a synchronous
// reply, only (eventually) a fresh boot indication.
type ResetReqRequest struct {
	Type ResetType
}

func (ResetReqRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (ResetReqRequest) CommandID() byte               { return 0 }
func (ResetReqRequest) MessageType() unpi.MessageType { return unpi.AREQ }
func (r ResetReqRequest) Encode() ([]byte, error)     { return []byte{byte(r.Type)}, nil }

type StackTuneRequest struct {
	Operation byte
	Value     int8
}

func (StackTuneRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (StackTuneRequest) CommandID() byte               { return 15 }
func (StackTuneRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r StackTuneRequest) Encode() ([]byte, error) {
	return []byte{r.Operation, byte(r.Value)}, nil
}

type StackTuneResponse struct {
	Value byte
}

func (r *StackTuneResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	v, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Value = v
	return nil
}

type OsalNvLengthRequest struct {
	ID uint16
}

func (OsalNvLengthRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (OsalNvLengthRequest) CommandID() byte               { return 19 }
func (OsalNvLengthRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r OsalNvLengthRequest) Encode() ([]byte, error) {
	return []byte{byte(r.ID), byte(r.ID >> 8)}, nil
}

type OsalNvLengthResponse struct {
	Length uint16
}

func (r *OsalNvLengthResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	v, err := rd.ReadU16LE()
	if err != nil {
		return err
	}
	r.Length = v
	return nil
}

type OsalNvReadRequest struct {
	ID     uint16
	Offset uint16
}

func (OsalNvReadRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (OsalNvReadRequest) CommandID() byte               { return 8 }
func (OsalNvReadRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r OsalNvReadRequest) Encode() ([]byte, error) {
	return []byte{byte(r.ID), byte(r.ID >> 8), byte(r.Offset), byte(r.Offset >> 8)}, nil
}

type OsalNvReadResponse struct {
	Status CommandStatus
	Value  []byte
}

func (r *OsalNvReadResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	status, err := rd.ReadU8()
	if err != nil {
		return err
	}
	length, err := rd.ReadU8()
	if err != nil {
		return err
	}
	value, err := rd.ReadBytes(int(length))
	if err != nil {
		return err
	}
	r.Status = CommandStatus(status)
	r.Value = append([]byte(nil), value...)
	return nil
}

// OsalNvReadExtRequest has the identical wire shape to OsalNvReadRequest;
// the firmware distinguishes it only by command id. NVMemory.ReadItem uses
// it for every read of an item longer than a single-byte-length reply can
// carry (more than 255 bytes).
type OsalNvReadExtRequest struct {
	ID     uint16
	Offset uint16
}

func (OsalNvReadExtRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (OsalNvReadExtRequest) CommandID() byte               { return 28 }
func (OsalNvReadExtRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r OsalNvReadExtRequest) Encode() ([]byte, error) {
	return []byte{byte(r.ID), byte(r.ID >> 8), byte(r.Offset), byte(r.Offset >> 8)}, nil
}

type OsalNvReadExtResponse struct {
	Status CommandStatus
	Value  []byte
}

func (r *OsalNvReadExtResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	status, err := rd.ReadU8()
	if err != nil {
		return err
	}
	length, err := rd.ReadU8()
	if err != nil {
		return err
	}
	value, err := rd.ReadBytes(int(length))
	if err != nil {
		return err
	}
	r.Status = CommandStatus(status)
	r.Value = append([]byte(nil), value...)
	return nil
}

type OsalNvWriteRequest struct {
	ID     uint16
	Offset uint16
	Value  []byte
}

func (OsalNvWriteRequest) Subsystem() unpi.Subsystem     { return unpi.Sys }
func (OsalNvWriteRequest) CommandID() byte               { return 29 }
func (OsalNvWriteRequest) MessageType() unpi.MessageType { return unpi.SREQ }
func (r OsalNvWriteRequest) Encode() ([]byte, error) {
	buf := make([]byte, 0, 6+len(r.Value))
	buf = append(buf, byte(r.ID), byte(r.ID>>8))
	buf = append(buf, byte(r.Offset), byte(r.Offset>>8))
	buf = append(buf, byte(len(r.Value)), byte(len(r.Value)>>8))
	buf = append(buf, r.Value...)
	return buf, nil
}

type OsalNvWriteResponse struct {
	Status CommandStatus
}

func (r *OsalNvWriteResponse) Decode(payload []byte) error {
	rd := unpi.NewReader(payload)
	status, err := rd.ReadU8()
	if err != nil {
		return err
	}
	r.Status = CommandStatus(status)
	return nil
}
