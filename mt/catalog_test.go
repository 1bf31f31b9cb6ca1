package mt

import (
	"testing"

	"github.com/cc253x/zstack/unpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByName(t *testing.T) {
	c, err := MustLookupByName("led_control")
	require.NoError(t, err)
	assert.Equal(t, unpi.Util, c.Subsystem)
	assert.Equal(t, byte(10), c.ID)
	assert.Equal(t, unpi.SREQ, c.MessageType)
}

func TestLookupByNameUnknown(t *testing.T) {
	_, err := MustLookupByName("does_not_exist")
	var notFound ErrNoCommandWithName
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "does_not_exist", notFound.Name)
}

func TestLookupByOpcode(t *testing.T) {
	c, ok := Lookup(unpi.Sys, 19)
	require.True(t, ok)
	assert.Equal(t, "osal_nv_length", c.Name)
}

func TestVersionEncodeDecode(t *testing.T) {
	req := VersionRequest{}
	payload, err := req.Encode()
	require.NoError(t, err)
	assert.Empty(t, payload)

	resp := &VersionResponse{}
	err = resp.Decode([]byte{0x02, 0x00, 0x02, 0x06, 0x03, 0xD9, 0x14, 0x34, 0x01})
	require.NoError(t, err)
	assert.Equal(t, byte(2), resp.TransportRev)
	assert.Equal(t, byte(0), resp.Product)
	assert.Equal(t, byte(2), resp.MajorRel)
	assert.Equal(t, byte(6), resp.MinorRel)
	assert.Equal(t, byte(3), resp.MaintRel)
	assert.Equal(t, uint32(0x013414D9), resp.Revision)
}

func TestGetDeviceInfoVariableLengthList(t *testing.T) {
	payload := []byte{
		0x00,                                           // status
		1, 2, 3, 4, 5, 6, 7, 8, // ieee addr
		0x34, 0x12, // short addr
		0x00, // device type
		0x00, // device state
		0x02, // num assoc devices
		0xAA, 0xBB, 0xCC, 0xDD, // two u16 entries
	}
	resp := &GetDeviceInfoResponse{}
	require.NoError(t, resp.Decode(payload))
	assert.Equal(t, byte(2), resp.NumAssocDevices)
	assert.Equal(t, []uint16{0xBBAA, 0xDDCC}, resp.AssocDevicesList)
}

func TestGetDeviceInfoZeroAssocDevices(t *testing.T) {
	payload := []byte{
		0x00,
		1, 2, 3, 4, 5, 6, 7, 8,
		0x34, 0x12,
		0x00,
		0x00,
		0x00,
	}
	resp := &GetDeviceInfoResponse{}
	require.NoError(t, resp.Decode(payload))
	assert.Empty(t, resp.AssocDevicesList)
}

func TestCommandStatusUnknownValue(t *testing.T) {
	s := CommandStatus(0x7f)
	assert.Equal(t, "Unknown(0x7f)", s.String())
	assert.False(t, s.OK())
	assert.True(t, StatusSuccess.OK())
}

func TestOsalNvWriteEncode(t *testing.T) {
	req := OsalNvWriteRequest{ID: 0x0003, Offset: 0, Value: []byte{1, 2, 3}}
	b, err := req.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 0x03, 0x00, 1, 2, 3}, b)
}
