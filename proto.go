package mgsp

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// FrameLength is the size of every panel message: 36 payload bytes plus a
// trailing checksum byte.
const FrameLength = 37

const (
	cmdInitiate   = 0x72
	cmdInitialize = 0x00
	cmdAuthOK     = 0x10
	cmdAuthDenied = 0x70
	cmdAction     = 0x40
	cmdRead       = 0x50
	cmdEvent      = 0xe0

	initiateResult = 0xff
)

var (
	ErrFrameTooShort    = errors.New("frame too short")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// checksum is the sum of all bytes mod 256.
func checksum(buf []byte) byte {
	var sum byte
	for _, b := range buf {
		sum += b
	}
	return sum
}

func sealFrame(frame []byte) []byte {
	frame[FrameLength-1] = checksum(frame[:FrameLength-1])
	return frame
}

// encodePassword packs a 4 hex-digit pc password into its two wire bytes,
// e.g. "abcd" -> 0xAB 0xCD. Anything else is rejected before any write.
func encodePassword(password string) ([2]byte, error) {
	if len(password) != 4 {
		return [2]byte{}, fmt.Errorf("%w: must be 4 hexadecimal digits", ErrInvalidPassword)
	}
	raw, err := hex.DecodeString(password)
	if err != nil {
		return [2]byte{}, fmt.Errorf("%w: must be 4 hexadecimal digits", ErrInvalidPassword)
	}
	return [2]byte{raw[0], raw[1]}, nil
}

func makeInitiateFrame(userID byte) []byte {
	frame := make([]byte, FrameLength)
	frame[0] = cmdInitiate
	frame[35] = userID
	return sealFrame(frame)
}

func makeInitializeFrame(id PanelIdentity, password [2]byte, source SourceID, userID byte) []byte {
	frame := make([]byte, FrameLength)
	frame[0] = cmdInitialize
	frame[1] = byte(id.ProductID)
	frame[2] = id.Firmware.Version
	frame[3] = id.Firmware.Revision
	frame[4] = id.Firmware.Minor
	binary.BigEndian.PutUint16(frame[5:7], id.PanelID)
	frame[7] = password[0]
	frame[8] = password[1]
	frame[12] = byte(source)
	frame[13] = userID
	frame[35] = userID
	return sealFrame(frame)
}

func makeActionFrame(action, argument byte, source SourceID, userID byte) []byte {
	frame := make([]byte, FrameLength)
	frame[0] = cmdAction
	frame[4] = action
	frame[5] = argument
	frame[33] = byte(source)
	frame[34] = userID
	frame[35] = userID
	return sealFrame(frame)
}

func makeEEPROMFrame(address uint16, records byte, source SourceID, userID byte) []byte {
	frame := make([]byte, FrameLength)
	frame[0] = cmdRead
	binary.BigEndian.PutUint16(frame[2:4], address)
	frame[4] = records
	frame[33] = byte(source)
	frame[34] = userID
	frame[35] = userID
	return sealFrame(frame)
}

// validateFrame checks the trailing-byte checksum and the fixed length. Short
// reads fail here: a truncated frame almost never sums to its last byte.
func validateFrame(frame []byte) error {
	if len(frame) < 2 {
		return ErrFrameTooShort
	}
	last := len(frame) - 1
	if frame[last] != checksum(frame[:last]) {
		return fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrChecksumMismatch, frame[last], checksum(frame[:last]))
	}
	if len(frame) != FrameLength {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameTooShort, len(frame), FrameLength)
	}
	return nil
}

// Message is one decoded panel frame: a PanelIdentity, AuthReply, ActionReply,
// MemoryPage, or EventRecord.
type Message interface {
	message()
}

// DecodeMessage validates a raw frame and decodes the typed record for its
// command byte. Handshake and auth messages match exactly; action responses,
// memory responses, and live events match by range.
func DecodeMessage(frame []byte) (Message, error) {
	if len(frame) < 2 {
		return nil, ErrFrameTooShort
	}
	cmd := frame[0]
	switch {
	case cmd == cmdInitiate:
		return parseIdentity(frame)
	case cmd == cmdInitialize:
		return parseInitialize(frame)
	case cmd == cmdAuthOK || cmd == cmdAuthDenied:
		return parseAuthReply(frame)
	case isActionReply(cmd):
		return parseActionReply(frame)
	case isMemoryReply(cmd):
		return parseMemoryPage(frame)
	case isLiveEvent(cmd):
		return parseLiveEvent(frame)
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownCommand, cmd)
	}
}

func isActionReply(cmd byte) bool { return cmd >= cmdAction && cmd < cmdAction+0x10 }
func isMemoryReply(cmd byte) bool { return cmd >= cmdRead && cmd < cmdRead+0x10 }
func isLiveEvent(cmd byte) bool   { return cmd >= cmdEvent && cmd < cmdEvent+0x10 }

func parseIdentity(frame []byte) (PanelIdentity, error) {
	if err := validateFrame(frame); err != nil {
		return PanelIdentity{}, err
	}
	if frame[1] != initiateResult {
		return PanelIdentity{}, fmt.Errorf("unexpected result byte: 0x%02x", frame[1])
	}
	return PanelIdentity{
		ProductID: ProductID(frame[6]),
		Firmware: FirmwareVersion{
			Version:  frame[7],
			Revision: frame[8],
			Minor:    frame[9],
		},
		PanelID:    binary.BigEndian.Uint16(frame[10:12]),
		PCPassword: [2]byte{frame[12], frame[13]},
		SourceID:   SourceID(frame[27]),
		UserID:     frame[28],
	}, nil
}

func parseInitialize(frame []byte) (PanelIdentity, error) {
	if err := validateFrame(frame); err != nil {
		return PanelIdentity{}, err
	}
	return PanelIdentity{
		ProductID: ProductID(frame[1]),
		Firmware: FirmwareVersion{
			Version:  frame[2],
			Revision: frame[3],
			Minor:    frame[4],
		},
		PanelID:    binary.BigEndian.Uint16(frame[5:7]),
		PCPassword: [2]byte{frame[7], frame[8]},
		SourceID:   SourceID(frame[12]),
		UserID:     frame[13],
	}, nil
}

func parseAuthReply(frame []byte) (AuthReply, error) {
	if err := validateFrame(frame); err != nil {
		return AuthReply{}, err
	}
	return AuthReply{Code: frame[0], UserID: frame[35]}, nil
}

func parseActionReply(frame []byte) (ActionReply, error) {
	if err := validateFrame(frame); err != nil {
		return ActionReply{}, err
	}
	return ActionReply{Code: frame[0], UserID: frame[35]}, nil
}

func parseMemoryPage(frame []byte) (MemoryPage, error) {
	if err := validateFrame(frame); err != nil {
		return MemoryPage{}, err
	}
	data := make([]byte, 27)
	copy(data, frame[5:32])
	return MemoryPage{
		Code:    frame[0],
		Address: binary.BigEndian.Uint16(frame[2:4]),
		Records: frame[4],
		Data:    data,
	}, nil
}

func parseLiveEvent(frame []byte) (EventRecord, error) {
	if err := validateFrame(frame); err != nil {
		return EventRecord{}, err
	}
	return EventRecord{
		Command:   frame[0],
		Group:     frame[2],
		Event1:    frame[3],
		Event2:    frame[4],
		Partition: frame[5],
		LabelType: frame[10],
		Label:     strings.TrimRight(string(frame[11:27]), "\x00"),
	}, nil
}

func classifyResult(code byte) CommandResult {
	return CommandResult{
		Success: code == byte(ResultSuccess),
		Code:    ResultCode(code),
	}
}
