package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// ErrNotConfigured is returned by Ping on a printer that has no hardware.
var ErrNotConfigured = errors.New("printer: not configured")

// Printer sends raw ESC/POS jobs to a thermal printer.
type Printer interface {
	Print(ctx context.Context, data []byte) error
	// Ping reports whether the printer can be reached right now.
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and addresses a printer.
type Config struct {
	Type    string // usb, network or none
	USBPath string // e.g. /dev/usb/lp0
	Address string // host:port, e.g. 192.168.1.100:9100
}

// New returns the printer described by cfg.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case "usb":
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for usb printers")
		}
		return &usbPrinter{path: cfg.USBPath}, nil
	case "network":
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printers")
		}
		return &networkPrinter{address: cfg.Address, dialTimeout: 5 * time.Second, writeTimeout: 10 * time.Second}, nil
	case "none", "":
		return NullPrinter{}, nil
	}
	return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", cfg.Type)
}

// usbPrinter writes to a device file, opened per job.
type usbPrinter struct {
	mu   sync.Mutex
	path string
}

func (p *usbPrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Ping(ctx context.Context) error {
	_, err := os.Stat(p.path)
	return err
}

func (p *usbPrinter) Close() error { return nil }

// networkPrinter dials a raw TCP port, usually 9100, per job.
type networkPrinter struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

func (p *networkPrinter) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: p.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return nil, fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	return conn, nil
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Ping(ctx context.Context) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p *networkPrinter) Close() error { return nil }

// NullPrinter accepts every job and prints nothing.
type NullPrinter struct{}

func (NullPrinter) Print(context.Context, []byte) error { return nil }
func (NullPrinter) Ping(context.Context) error          { return ErrNotConfigured }
func (NullPrinter) Close() error                        { return nil }
