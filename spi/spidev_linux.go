//go:build linux

package spi

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// spidev ioctl requests, from <linux/spi/spidev.h>.
const (
	spiIOCWrMode        = 0x40016B01
	spiIOCWrBitsPerWord = 0x40016B03
	spiIOCWrMaxSpeedHz  = 0x40046B04
)

// spiIOCMessage builds the SPI_IOC_MESSAGE(n) request number.
func spiIOCMessage(n int) uintptr {
	return uintptr(0x40006B00 | (n*int(unsafe.Sizeof(spiTransfer{})))<<16)
}

// spiTransfer mirrors struct spi_ioc_transfer.
type spiTransfer struct {
	txBuf       uint64
	rxBuf       uint64
	length      uint32
	speedHz     uint32
	delayUsecs  uint16
	bitsPerWord uint8
	csChange    uint8
	txNbits     uint8
	rxNbits     uint8
	wordDelay   uint8
	pad         uint8
}

// Spidev is a Transport backed by a Linux /dev/spidevB.C character device.
// The kernel handles chip-select framing, so each full-duplex message is one
// atomic transaction as Transport requires.
//
// The ENC28J60 speaks SPI mode 0 at up to 20 MHz.
type Spidev struct {
	fd      int
	path    string
	speedHz uint32
}

// Open opens a spidev device, e.g. Open("/dev/spidev0.0", 8_000_000).
// Mode 0 and 8-bit words are programmed; speedHz caps the clock rate.
func Open(path string, speedHz uint32) (*Spidev, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &Spidev{fd: fd, path: path, speedHz: speedHz}

	mode := uint8(0) // SPI mode 0: CPOL=0, CPHA=0
	if err := s.ioctl(spiIOCWrMode, unsafe.Pointer(&mode)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set mode on %s: %w", path, err)
	}

	bits := uint8(8)
	if err := s.ioctl(spiIOCWrBitsPerWord, unsafe.Pointer(&bits)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set bits per word on %s: %w", path, err)
	}

	if err := s.ioctl(spiIOCWrMaxSpeedHz, unsafe.Pointer(&s.speedHz)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set max speed on %s: %w", path, err)
	}

	return s, nil
}

// Exchange performs one full-duplex SPI_IOC_MESSAGE transfer.
func (s *Spidev) Exchange(tx, rx []byte) error {
	if len(tx) == 0 {
		return nil
	}
	if rx != nil && len(rx) < len(tx) {
		return fmt.Errorf("spidev %s: rx buffer shorter than tx (%d < %d)", s.path, len(rx), len(tx))
	}

	tr := spiTransfer{
		txBuf:   uint64(uintptr(unsafe.Pointer(&tx[0]))),
		length:  uint32(len(tx)),
		speedHz: s.speedHz,
	}
	if rx != nil {
		tr.rxBuf = uint64(uintptr(unsafe.Pointer(&rx[0])))
	}

	if err := s.ioctl(spiIOCMessage(1), unsafe.Pointer(&tr)); err != nil {
		return fmt.Errorf("spidev %s: transfer failed: %w", s.path, err)
	}
	return nil
}

// Close closes the device node.
func (s *Spidev) Close() error {
	return unix.Close(s.fd)
}

func (s *Spidev) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(s.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
