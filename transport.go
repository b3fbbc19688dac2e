package mgsp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/j-keck/arping"
	"go.bug.st/serial"
	"golang.org/x/exp/slices"
)

// Transport is the byte link to the panel. Read returns whatever arrived
// within the transport's timeout; zero bytes with a nil error means no data,
// a non-nil error means the link itself failed.
type Transport interface {
	io.ReadWriteCloser
	Available() (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

const probeTimeout = time.Millisecond

type serialTransport struct {
	port    serial.Port
	timeout time.Duration
	stash   []byte
}

// OpenSerial opens a panel link on a serial device. MG/SP serial ports run
// 9600 8N1.
func OpenSerial(device string, baud int, timeout time.Duration) (Transport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", device, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("could not set the read timeout: %w", err)
	}
	return &serialTransport{port: port, timeout: timeout}, nil
}

func (t *serialTransport) Read(p []byte) (int, error) {
	if len(t.stash) > 0 {
		n := copy(p, t.stash)
		t.stash = t.stash[n:]
		return n, nil
	}
	return t.port.Read(p)
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

// Available probes the port with a short timeout and stashes the byte it
// pulls, if any; the next Read drains the stash first. The serial library has
// no in-waiting query, so one buffered byte stands in for the count.
func (t *serialTransport) Available() (int, error) {
	if len(t.stash) > 0 {
		return len(t.stash), nil
	}
	if err := t.port.SetReadTimeout(probeTimeout); err != nil {
		return 0, err
	}
	defer t.port.SetReadTimeout(t.timeout)
	var probe [1]byte
	n, err := t.port.Read(probe[:])
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.stash = append(t.stash, probe[0])
	}
	return len(t.stash), nil
}

func (t *serialTransport) ResetInputBuffer() error {
	t.stash = nil
	return t.port.ResetInputBuffer()
}

func (t *serialTransport) ResetOutputBuffer() error {
	return t.port.ResetOutputBuffer()
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

type tcpTransport struct {
	conn    net.Conn
	timeout time.Duration
	stash   []byte
}

// DialTCP opens a panel link through an IP100/IP150 serial-over-IP bridge.
func DialTCP(host, port string, timeout time.Duration) (Transport, error) {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), timeout)
	if err != nil {
		return nil, fmt.Errorf("could not connect: %w", err)
	}
	return &tcpTransport{conn: conn, timeout: timeout}, nil
}

func (t *tcpTransport) Read(p []byte) (int, error) {
	if len(t.stash) > 0 {
		n := copy(p, t.stash)
		t.stash = t.stash[n:]
		return n, nil
	}
	return t.timedRead(p, t.timeout)
}

func (t *tcpTransport) timedRead(p []byte, timeout time.Duration) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

func (t *tcpTransport) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *tcpTransport) Available() (int, error) {
	if len(t.stash) > 0 {
		return len(t.stash), nil
	}
	var probe [1]byte
	n, err := t.timedRead(probe[:], probeTimeout)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.stash = append(t.stash, probe[0])
	}
	return len(t.stash), nil
}

// ResetInputBuffer drains whatever the bridge already pushed our way.
func (t *tcpTransport) ResetInputBuffer() error {
	t.stash = nil
	var buf [64]byte
	for {
		n, err := t.timedRead(buf[:], probeTimeout)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (t *tcpTransport) ResetOutputBuffer() error {
	return nil
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

// ListPorts returns the system's serial devices, sorted.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("could not list serial ports: %w", err)
	}
	slices.Sort(ports)
	return ports, nil
}

// MacAddress resolves the hardware address of an IP bridge via ARP. Needs
// cap_net_raw.
func MacAddress(ip string) (string, error) {
	hw, _, err := arping.Ping(net.ParseIP(ip))
	if err != nil {
		return "", fmt.Errorf("could not get the mac address: %w", err)
	}
	return hw.String(), nil
}
