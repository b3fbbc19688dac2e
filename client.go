package mgsp

import (
	"errors"
	"fmt"
	"io"
	"time"

	logp "github.com/charmbracelet/log"
)

// DefaultTimeout bounds every handshake, auth, and command response wait.
const DefaultTimeout = 5 * time.Second

const pollInterval = 10 * time.Millisecond

const (
	MaxPartitions = 8
	MaxZones      = 192
	MaxOutputs    = 16
	MaxRecords    = 32
)

var (
	ErrNotIdentified     = errors.New("session is not identified")
	ErrAlreadyIdentified = errors.New("handshake already completed")
	ErrNotAuthenticated  = errors.New("session is not authenticated")
	ErrInvalidPassword   = errors.New("invalid pc password")
	ErrCommandTimeout    = errors.New("timed out waiting for the panel")
)

// Client drives one protocol session over a Transport it exclusively owns.
// It is not safe for concurrent use: the link is half-duplex, so a second
// command while a response is pending would desynchronize frame boundaries.
type Client struct {
	t        Transport
	log      *logp.Logger
	timeout  time.Duration
	state    State
	identity PanelIdentity
}

// New wraps an open transport in a session. A nil logger silences
// diagnostics; a zero timeout means DefaultTimeout.
func New(t Transport, logger *logp.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = logp.New(io.Discard)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{t: t, log: logger, timeout: timeout}
}

func (c *Client) State() State { return c.state }

// Identity returns what the panel reported during Identify.
func (c *Client) Identity() PanelIdentity { return c.identity }

func (c *Client) Close() error {
	return c.t.Close()
}

// Identify performs the InitiateCommunication handshake and records the
// panel's identity. Valid only on a fresh session.
func (c *Client) Identify() (PanelIdentity, error) {
	if c.state != StateDisconnected {
		return PanelIdentity{}, ErrAlreadyIdentified
	}
	c.log.Debug("initiate communication")
	if err := c.t.ResetInputBuffer(); err != nil {
		return PanelIdentity{}, fmt.Errorf("could not reset the input buffer: %w", err)
	}
	if _, err := c.t.Write(makeInitiateFrame(0)); err != nil {
		return PanelIdentity{}, fmt.Errorf("could not initiate communication: %w", err)
	}
	frame, err := c.awaitFrame(func(cmd byte) bool { return cmd == cmdInitiate })
	if err != nil {
		return PanelIdentity{}, err
	}
	id, err := parseIdentity(frame)
	if err != nil {
		return PanelIdentity{}, fmt.Errorf("could not decode the panel identity: %w", err)
	}
	c.identity = id
	c.state = StateIdentified
	c.log.Info(
		"panel identified",
		"product", id.ProductID,
		"firmware", id.Firmware,
		"panel", id.PanelID,
	)
	return id, nil
}

// Authenticate sends InitializeCommunication built from the identity learned
// during Identify plus the pc password. It returns false with a nil error
// when the panel rejects the password; the session is then failed and must
// be reconnected.
func (c *Client) Authenticate(password string) (bool, error) {
	if c.state != StateIdentified {
		return false, ErrNotIdentified
	}
	pwd, err := encodePassword(password)
	if err != nil {
		return false, err
	}
	c.log.Debug("initialize communication")
	frame := makeInitializeFrame(c.identity, pwd, SourcePanelApp, 0)
	if _, err := c.t.Write(frame); err != nil {
		return false, fmt.Errorf("could not authenticate: %w", err)
	}
	// The 0x10 acknowledgement arrives truncated by the length heuristic
	// (see readFrame), so only the command byte is meaningful here.
	resp, err := c.awaitFrame(func(cmd byte) bool { return cmd == cmdAuthOK || cmd == cmdAuthDenied })
	if err != nil {
		return false, err
	}
	if resp[0] == cmdAuthOK {
		c.state = StateAuthenticated
		c.log.Info("authenticated")
		return true, nil
	}
	c.state = StateFailed
	c.log.Warn("authentication rejected by the panel")
	return false, nil
}

// Arm arms a partition in the given mode.
func (c *Client) Arm(partition int, mode ArmMode) (CommandResult, error) {
	if c.state != StateAuthenticated {
		return CommandResult{}, ErrNotAuthenticated
	}
	action, ok := armActions[mode]
	if !ok {
		return CommandResult{}, fmt.Errorf("unknown arm mode %q", mode)
	}
	if partition < 1 || partition > MaxPartitions {
		return CommandResult{}, fmt.Errorf("partition out of range: %d", partition)
	}
	c.log.Debug("arm", "partition", partition, "mode", mode)
	return c.performAction(action, byte(partition-1))
}

// Disarm disarms a partition.
func (c *Client) Disarm(partition int) (CommandResult, error) {
	if c.state != StateAuthenticated {
		return CommandResult{}, ErrNotAuthenticated
	}
	if partition < 1 || partition > MaxPartitions {
		return CommandResult{}, fmt.Errorf("partition out of range: %d", partition)
	}
	c.log.Debug("disarm", "partition", partition)
	return c.performAction(actionDisarm, byte(partition-1))
}

// BypassZone toggles the bypass state of a zone. The protocol has no
// separate clear code: sending it again puts the zone back in service.
func (c *Client) BypassZone(zone int) (CommandResult, error) {
	if c.state != StateAuthenticated {
		return CommandResult{}, ErrNotAuthenticated
	}
	if zone < 1 || zone > MaxZones {
		return CommandResult{}, fmt.Errorf("zone out of range: %d", zone)
	}
	c.log.Debug("bypass", "zone", zone)
	return c.performAction(actionBypass, byte(zone-1))
}

// SetOutput drives a PGM output.
func (c *Client) SetOutput(output int, mode OutputMode) (CommandResult, error) {
	if c.state != StateAuthenticated {
		return CommandResult{}, ErrNotAuthenticated
	}
	action, ok := outputActions[mode]
	if !ok {
		return CommandResult{}, fmt.Errorf("unknown output mode %q", mode)
	}
	if output < 1 || output > MaxOutputs {
		return CommandResult{}, fmt.Errorf("output out of range: %d", output)
	}
	c.log.Debug("set output", "output", output, "mode", mode)
	return c.performAction(action, byte(output-1))
}

func (c *Client) performAction(action, argument byte) (CommandResult, error) {
	if _, err := c.t.Write(makeActionFrame(action, argument, SourcePanelApp, 0)); err != nil {
		return CommandResult{}, fmt.Errorf("could not send the command: %w", err)
	}
	resp, err := c.awaitFrame(isActionReply)
	if err != nil {
		return CommandResult{}, err
	}
	result := classifyResult(resp[0])
	if !result.Success {
		c.log.Warn("command rejected", "result", result.Code)
	}
	return result, nil
}

// ReadMemory reads records from the panel EEPROM starting at address and
// returns the raw data payload.
func (c *Client) ReadMemory(address uint16, records int) ([]byte, error) {
	if c.state != StateAuthenticated {
		return nil, ErrNotAuthenticated
	}
	if records < 1 || records > MaxRecords {
		return nil, fmt.Errorf("records out of range: %d", records)
	}
	c.log.Debug("read eeprom", "address", fmt.Sprintf("0x%04x", address), "records", records)
	if _, err := c.t.Write(makeEEPROMFrame(address, byte(records), SourcePanelApp, 0)); err != nil {
		return nil, fmt.Errorf("could not send the read request: %w", err)
	}
	resp, err := c.awaitFrame(isMemoryReply)
	if err != nil {
		return nil, err
	}
	page, err := parseMemoryPage(resp)
	if err != nil {
		return nil, fmt.Errorf("could not decode the eeprom response: %w", err)
	}
	return page.Data, nil
}

// awaitFrame polls until a frame whose command byte satisfies match arrives
// or the timeout expires. Frames that do not match are logged and dropped;
// the wait keeps going.
func (c *Client) awaitFrame(match func(byte) bool) ([]byte, error) {
	deadline := time.Now().Add(c.timeout)
	for time.Now().Before(deadline) {
		n, err := c.t.Available()
		if err != nil {
			return nil, fmt.Errorf("could not poll the transport: %w", err)
		}
		if n > 0 {
			frame, err := readFrame(c.t)
			if err != nil {
				return nil, err
			}
			if len(frame) > 0 {
				if match(frame[0]) {
					return frame, nil
				}
				c.log.Warn("unexpected command", "command", fmt.Sprintf("0x%02x", frame[0]))
			}
		}
		time.Sleep(pollInterval)
	}
	return nil, ErrCommandTimeout
}
