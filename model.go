package mgsp

import "fmt"

// ProductID identifies the panel model reported during the handshake. Some
// codes are shared between the Digiplex and MG/SP families; String prefers
// the MG/SP reading, which is what this client speaks.
type ProductID byte

const (
	ProductDigiplex48  ProductID = 0
	ProductDigiplex72  ProductID = 1
	ProductMG5000      ProductID = 2
	ProductDigiplex112 ProductID = 3
	ProductMG5050      ProductID = 4
	ProductSP4000      ProductID = 5
	ProductSP5500      ProductID = 21
	ProductSP6000      ProductID = 22
	ProductSP7000      ProductID = 23
	ProductSP65        ProductID = 24
)

func (p ProductID) String() string {
	switch p {
	case ProductDigiplex48:
		return "DGP2-48"
	case ProductDigiplex72:
		return "DGP2-72"
	case ProductMG5000:
		return "MG5000"
	case ProductDigiplex112:
		return "DGP2-112"
	case ProductMG5050:
		return "MG5050"
	case ProductSP4000:
		return "SP4000"
	case ProductSP5500:
		return "SP5500"
	case ProductSP6000:
		return "SP6000"
	case ProductSP7000:
		return "SP7000"
	case ProductSP65:
		return "SP65"
	default:
		return "Unknown"
	}
}

// SourceID identifies the class of application talking to the panel.
type SourceID byte

const (
	SourceBootLoader SourceID = 0
	SourcePanelApp   SourceID = 1
	SourceNEware     SourceID = 2
	SourceIP100      SourceID = 4
	SourceWinload    SourceID = 5
	SourceWinloadApp SourceID = 6
)

func (s SourceID) String() string {
	switch s {
	case SourceBootLoader:
		return "boot loader"
	case SourcePanelApp:
		return "panel application"
	case SourceNEware:
		return "NEware"
	case SourceIP100:
		return "IP100"
	case SourceWinload:
		return "Winload"
	case SourceWinloadApp:
		return "WinloadApp"
	default:
		return "Unknown"
	}
}

type FirmwareVersion struct {
	Version  byte
	Revision byte
	Minor    byte
}

func (f FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", f.Version, f.Revision, f.Minor)
}

// PanelIdentity holds what the panel reports about itself during the
// handshake. It is populated once and reused verbatim to build the
// authentication frame.
type PanelIdentity struct {
	ProductID  ProductID
	Firmware   FirmwareVersion
	PanelID    uint16
	PCPassword [2]byte
	SourceID   SourceID
	UserID     byte
}

func (PanelIdentity) message() {}

// ArmMode selects the partition arming variant.
type ArmMode string

const (
	ArmAway        ArmMode = "arm"
	ArmStay        ArmMode = "arm_stay"
	ArmSleep       ArmMode = "arm_sleep"
	ArmInstant     ArmMode = "arm_instant"
	ArmStayInstant ArmMode = "arm_stay_instant"
)

var armActions = map[ArmMode]byte{
	ArmStay:        0x01,
	ArmSleep:       0x02,
	ArmAway:        0x04,
	ArmStayInstant: 0x06,
	ArmInstant:     0x07,
}

const (
	actionDisarm = 0x05
	// bypass also clears an active bypass, the panel toggles.
	actionBypass = 0x10
)

// OutputMode selects the PGM output action.
type OutputMode string

const (
	OutputOn          OutputMode = "on"
	OutputOff         OutputMode = "off"
	OutputOnOverride  OutputMode = "on_override"
	OutputOffOverride OutputMode = "off_override"
)

var outputActions = map[OutputMode]byte{
	OutputOn:          0x32,
	OutputOff:         0x33,
	OutputOnOverride:  0x34,
	OutputOffOverride: 0x35,
}

// State tracks where the session is in the handshake/auth sequence.
type State byte

const (
	StateDisconnected State = iota
	StateIdentified
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateIdentified:
		return "Identified"
	case StateAuthenticated:
		return "Authenticated"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ResultCode is the command byte of a PerformAction response; the byte itself
// carries the outcome.
type ResultCode byte

const (
	ResultSuccess          ResultCode = 0x40
	ResultFail             ResultCode = 0x41
	ResultInvalidArgument  ResultCode = 0x42
	ResultUserCodeRequired ResultCode = 0x43
)

func (r ResultCode) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFail:
		return "fail"
	case ResultInvalidArgument:
		return "invalid_argument"
	case ResultUserCodeRequired:
		return "user_code_required"
	default:
		return "unknown"
	}
}

// CommandResult is the classified outcome of one panel command.
type CommandResult struct {
	Success bool
	Code    ResultCode
}

// AuthReply is the panel's answer to InitializeCommunication: 0x10 granted,
// 0x70 denied.
type AuthReply struct {
	Code   byte
	UserID byte
}

func (AuthReply) message() {}

func (a AuthReply) Granted() bool { return a.Code == cmdAuthOK }

// ActionReply is a PerformAction response frame.
type ActionReply struct {
	Code   byte
	UserID byte
}

func (ActionReply) message() {}

func (a ActionReply) Result() CommandResult { return classifyResult(a.Code) }

// MemoryPage is one ReadEEPROM response: the echoed address and record count
// plus the fixed 27-byte data payload.
type MemoryPage struct {
	Code    byte
	Address uint16
	Records byte
	Data    []byte
}

func (MemoryPage) message() {}

// EventRecord is one decoded live-event frame. The label is the panel's fixed
// 16-byte text field with trailing NULs stripped.
type EventRecord struct {
	Command   byte
	Group     byte
	Event1    byte
	Event2    byte
	Partition byte
	LabelType byte
	Label     string
}

func (EventRecord) message() {}
