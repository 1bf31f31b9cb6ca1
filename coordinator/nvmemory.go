package coordinator

import (
	"fmt"
	"sync"
	"time"

	"github.com/cc253x/zstack/mt"
	"github.com/cc253x/zstack/registry"
	"github.com/cc253x/zstack/transport"
)

// singleReadChunk is the largest payload a single osal_nv_read reply can
// carry, bounded by its one-byte length field.
const singleReadChunk = 255

// NVMemory reads and writes non-volatile memory items on the radio. It
// shares the coordinator's duplex transport and subscription registry but
// serializes its own operations: the firmware does not echo the item id in
// an osal_nv_read reply, so two concurrent reads of different items cannot
// be told apart by their responses alone.
type NVMemory struct {
	mu       sync.Mutex
	duplex   *transport.Duplex
	registry *registry.Service
	timeout  time.Duration
}

func newNVMemory(d *transport.Duplex, reg *registry.Service, timeout time.Duration) *NVMemory {
	return &NVMemory{duplex: d, registry: reg, timeout: timeout}
}

// ReadItem reads the full value of NV item id, issuing as many
// osal_nv_read/osal_nv_read_ext requests as needed to accumulate its
// length. A zero-length item (absent) returns a nil slice and no error.
func (n *NVMemory) ReadItem(id uint16) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	lengthResp := &mt.OsalNvLengthResponse{}
	if err := requestWithReply(n.duplex, n.registry, mt.OsalNvLengthRequest{ID: id}, lengthResp, n.timeout); err != nil {
		return nil, newError(KindNvMemoryAdapter, err)
	}
	if lengthResp.Length == 0 {
		return nil, nil
	}

	useExt := lengthResp.Length > singleReadChunk
	out := make([]byte, 0, lengthResp.Length)
	for uint16(len(out)) < lengthResp.Length {
		offset := uint16(len(out))
		var status mt.CommandStatus
		var value []byte
		if useExt {
			resp := &mt.OsalNvReadExtResponse{}
			if err := requestWithReply(n.duplex, n.registry, mt.OsalNvReadExtRequest{ID: id, Offset: offset}, resp, n.timeout); err != nil {
				return nil, newError(KindNvMemoryAdapter, err)
			}
			status, value = resp.Status, resp.Value
		} else {
			resp := &mt.OsalNvReadResponse{}
			if err := requestWithReply(n.duplex, n.registry, mt.OsalNvReadRequest{ID: id, Offset: offset}, resp, n.timeout); err != nil {
				return nil, newError(KindNvMemoryAdapter, err)
			}
			status, value = resp.Status, resp.Value
		}
		if !status.OK() {
			return nil, newError(KindCommandStatusFailure, fmt.Errorf("osal_nv_read id=%d offset=%d: %s", id, offset, status))
		}
		if len(value) == 0 {
			break
		}
		out = append(out, value...)
	}
	if uint16(len(out)) > lengthResp.Length {
		out = out[:lengthResp.Length]
	}
	return out, nil
}

// WriteItem writes value to NV item id at offset 0, overwriting whatever
// was there.
func (n *NVMemory) WriteItem(id uint16, value []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	resp := &mt.OsalNvWriteResponse{}
	req := mt.OsalNvWriteRequest{ID: id, Offset: 0, Value: value}
	if err := requestWithReply(n.duplex, n.registry, req, resp, n.timeout); err != nil {
		return newError(KindNvMemoryAdapter, err)
	}
	if !resp.Status.OK() {
		return newError(KindCommandStatusFailure, fmt.Errorf("osal_nv_write id=%d: %s", id, resp.Status))
	}
	return nil
}
