package enc28j60

import (
	"context"
	"encoding/binary"

	"github.com/moffa90/go-enc28j60/protocol"
)

// Ethernet header geometry.
const (
	macLength    = 6
	headerLength = macLength*2 + 2
)

// Common EtherType values for SendTo.
const (
	EtherTypeIPv4 = 0x0800
	EtherTypeARP  = 0x0806
	EtherTypeVLAN = 0x8100
	EtherTypeIPv6 = 0x86DD
)

// Frame is a received Ethernet frame. Data holds the frame as it came off
// the wire, trailing CRC stripped; Status is the hardware's receive status
// vector for it.
type Frame struct {
	Data   []byte
	Status ReceiveStatus
}

// ReceiveStatus aliases the protocol-level receive status vector so most
// callers never import the protocol package.
type ReceiveStatus = protocol.ReceiveStatusVector

// SendTo builds an Ethernet frame from destination, EtherType and payload,
// using the driver's configured MAC as the source address, and transmits it.
// For callers that already hold complete frames, use Send.
func (d *Driver) SendTo(ctx context.Context, dst [6]byte, etherType uint16, payload []byte) error {
	frame := make([]byte, 0, headerLength+len(payload))
	frame = append(frame, dst[:]...)
	src := d.MACAddress()
	frame = append(frame, src[:]...)

	var et [2]byte
	binary.BigEndian.PutUint16(et[:], etherType)
	frame = append(frame, et[:]...)
	frame = append(frame, payload...)

	return d.Send(ctx, frame)
}
