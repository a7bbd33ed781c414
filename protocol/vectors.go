package protocol

import (
	"encoding/binary"
	"fmt"
)

// ReceiveStatusVector is the per-frame metadata the hardware writes before
// every received frame's payload. Decoded from the four status bytes that
// follow the next-packet pointer in the receive header.
//
// Layout per data sheet table 7-3 (bits 16-47 of the full vector):
//
//	byte 0-1  received byte count, little-endian, CRC included
//	byte 2    long drop event, carrier event, CRC error,
//	          length check error, length out of range, received OK
//	byte 3    multicast, broadcast, dribble nibble, control frame,
//	          pause frame, unknown opcode, VLAN
type ReceiveStatusVector struct {
	// ByteCount is the frame length in bytes, including the 4-byte CRC
	ByteCount uint16

	// ReceivedOK is set when the frame arrived with a valid CRC and no
	// symbol errors; a clear flag marks the frame as corrupt
	ReceivedOK bool

	// CRCError indicates the frame CRC did not match its contents
	CRCError bool

	// LengthCheckError indicates the frame length field did not match
	// the actual data length
	LengthCheckError bool

	// LengthOutOfRange indicates a type/length field above 1500 that is
	// not a recognized type (usually benign for EtherType frames)
	LengthOutOfRange bool

	// LongDropEvent indicates a packet over 50,000 bit times was seen
	LongDropEvent bool

	// CarrierEvent indicates a carrier event between frames
	CarrierEvent bool

	Multicast     bool
	Broadcast     bool
	DribbleNibble bool
	ControlFrame  bool
	PauseFrame    bool
	UnknownOpcode bool
	VLAN          bool
}

// PayloadLength returns the frame length without the trailing CRC.
func (v ReceiveStatusVector) PayloadLength() int {
	if v.ByteCount < CRCLength {
		return 0
	}
	return int(v.ByteCount) - CRCLength
}

// ParseReceiveHeader decodes the six byte header the hardware writes at the
// start of each received frame: the address of the next frame header
// followed by the receive status vector.
func ParseReceiveHeader(h []byte) (nextPacket uint16, rsv ReceiveStatusVector, err error) {
	if len(h) < ReceiveHeaderLength {
		return 0, ReceiveStatusVector{}, fmt.Errorf("receive header too short: got %d bytes, need %d", len(h), ReceiveHeaderLength)
	}

	nextPacket = binary.LittleEndian.Uint16(h[0:2])
	rsv = ReceiveStatusVector{
		ByteCount:        binary.LittleEndian.Uint16(h[2:4]),
		LongDropEvent:    h[4]&0x01 != 0,
		CarrierEvent:     h[4]&0x04 != 0,
		CRCError:         h[4]&0x10 != 0,
		LengthCheckError: h[4]&0x20 != 0,
		LengthOutOfRange: h[4]&0x40 != 0,
		ReceivedOK:       h[4]&0x80 != 0,
		Multicast:        h[5]&0x01 != 0,
		Broadcast:        h[5]&0x02 != 0,
		DribbleNibble:    h[5]&0x04 != 0,
		ControlFrame:     h[5]&0x08 != 0,
		PauseFrame:       h[5]&0x10 != 0,
		UnknownOpcode:    h[5]&0x20 != 0,
		VLAN:             h[5]&0x40 != 0,
	}
	return nextPacket, rsv, nil
}

// TransmitStatusVector is the seven byte status block the hardware writes
// into packet memory directly after a transmitted frame.
//
// Layout per data sheet table 7-1:
//
//	byte 0-1  transmit byte count, little-endian
//	byte 2    collision count (low nibble), CRC error, length check
//	          error, length out of range, done
//	byte 3    multicast, broadcast, packet defer, excessive defer,
//	          excessive collision, late collision, giant, underrun
//	byte 4-5  total bytes transmitted on wire, little-endian
//	byte 6    control frame, pause frame, backpressure, VLAN
type TransmitStatusVector struct {
	// ByteCount is the length of the frame as staged for transmission
	ByteCount uint16

	// CollisionCount is the number of collisions the frame suffered
	// before going out (half-duplex only)
	CollisionCount uint8

	// Done is set when the transmission completed
	Done bool

	CRCError         bool
	LengthCheckError bool
	LengthOutOfRange bool

	Multicast bool
	Broadcast bool

	// PacketDeferred is set when the frame was deferred at least once
	PacketDeferred bool

	// ExcessiveDefer is set when the frame was aborted after deferring
	// for more than 24,287 bit times
	ExcessiveDefer bool

	// ExcessiveCollision is set when the frame was aborted after the
	// maximum number of collisions
	ExcessiveCollision bool

	// LateCollision is set when a collision occurred outside the
	// collision window
	LateCollision bool

	// Giant is set when the frame exceeded the maximum frame length
	Giant bool

	// Underrun is set when the MAC ran out of data mid-frame
	Underrun bool

	// TotalTransmitted counts every byte that went on the wire for this
	// frame, retries included
	TotalTransmitted uint16

	ControlFrame        bool
	PauseFrame          bool
	BackpressureApplied bool
	VLAN                bool
}

// ParseTransmitStatusVector decodes a transmit status vector read from
// packet memory.
func ParseTransmitStatusVector(b []byte) (TransmitStatusVector, error) {
	if len(b) < TransmitStatusLength {
		return TransmitStatusVector{}, fmt.Errorf("transmit status vector too short: got %d bytes, need %d", len(b), TransmitStatusLength)
	}

	return TransmitStatusVector{
		ByteCount:           binary.LittleEndian.Uint16(b[0:2]),
		CollisionCount:      b[2] & 0x0F,
		CRCError:            b[2]&0x10 != 0,
		LengthCheckError:    b[2]&0x20 != 0,
		LengthOutOfRange:    b[2]&0x40 != 0,
		Done:                b[2]&0x80 != 0,
		Multicast:           b[3]&0x01 != 0,
		Broadcast:           b[3]&0x02 != 0,
		PacketDeferred:      b[3]&0x04 != 0,
		ExcessiveDefer:      b[3]&0x08 != 0,
		ExcessiveCollision:  b[3]&0x10 != 0,
		LateCollision:       b[3]&0x20 != 0,
		Giant:               b[3]&0x40 != 0,
		Underrun:            b[3]&0x80 != 0,
		TotalTransmitted:    binary.LittleEndian.Uint16(b[4:6]),
		ControlFrame:        b[6]&0x01 != 0,
		PauseFrame:          b[6]&0x02 != 0,
		BackpressureApplied: b[6]&0x04 != 0,
		VLAN:                b[6]&0x08 != 0,
	}, nil
}
