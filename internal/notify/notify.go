package notify

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/gen2brain/beeep"
)

var ErrUnavailable = errors.New("desktop notifications unavailable")

// Notification is a single user-facing message.
type Notification struct {
	Title string
	Body  string
	// Sticky asks the desktop to keep the notification until dismissed.
	Sticky bool
}

// Notifier delivers desktop notifications.
type Notifier interface {
	// RequestPermission checks whether notifications can be shown.
	RequestPermission() error
	Granted() bool
	Notify(n Notification) error
}

// Desktop shows notifications through beeep. Sticky notifications are sent
// as alerts.
type Desktop struct {
	goos     string
	getenv   func(key string) string
	lookPath func(file string) (string, error)
	notify   func(title, body string) error
	alert    func(title, body string) error

	mu      sync.Mutex
	granted bool
}

// NewDesktop returns a Desktop notifier for the running OS.
func NewDesktop() *Desktop {
	beeep.AppName = "dailytask"
	return &Desktop{
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		alert: func(title, body string) error {
			return beeep.Alert(title, body, "")
		},
	}
}

// available reports whether the host has a notification daemon beeep can
// reach.
func (d *Desktop) available() error {
	switch d.goos {
	case "windows":
		return nil
	case "darwin":
		if _, err := d.lookPath("osascript"); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if d.getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
			return nil
		}
		if _, err := d.lookPath("notify-send"); err != nil {
			return fmt.Errorf("%w: no session bus and %v", ErrUnavailable, err)
		}
		return nil
	}
	return fmt.Errorf("%w on %s", ErrUnavailable, d.goos)
}

func (d *Desktop) RequestPermission() error {
	if err := d.available(); err != nil {
		return err
	}
	d.mu.Lock()
	d.granted = true
	d.mu.Unlock()
	return nil
}

func (d *Desktop) Granted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.granted
}

func (d *Desktop) Notify(n Notification) error {
	if !d.Granted() {
		return ErrUnavailable
	}
	send := d.notify
	if n.Sticky {
		send = d.alert
	}
	if err := send(n.Title, n.Body); err != nil {
		return fmt.Errorf("notify %q: %w", n.Title, err)
	}
	return nil
}

// Disabled never grants permission.
type Disabled struct{}

func (Disabled) RequestPermission() error  { return ErrUnavailable }
func (Disabled) Granted() bool             { return false }
func (Disabled) Notify(Notification) error { return ErrUnavailable }
