package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"ornithology/pkg/config"
)

// desktopSender delivers one platform's desktop notification.
type desktopSender interface {
	Send(title, message string) error
}

type linuxSender struct{}

func (linuxSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name", "ornithology", title, message).Run()
}

type macSender struct{}

func (macSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

type windowsSender struct{}

func (windowsSender) Send(title, message string) error {
	script := fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$xml = @"
<toast><visual><binding template="ToastText02"><text id="1">%s</text><text id="2">%s</text></binding></visual></toast>
"@
$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
$doc.LoadXml($xml)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("ornithology").Show([Windows.UI.Notifications.ToastNotification]::new($doc))
`, title, message)
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// Notifier delivers run notifications per the notification settings:
// styled terminal lines, optionally mirrored to the desktop.
type Notifier struct {
	cfg    config.NotificationConfig
	sender desktopSender
	out    io.Writer
}

// NewNotifier creates a notifier for the current platform. With type
// "desktop" on an unsupported platform it falls back to terminal-only.
func NewNotifier(cfg config.NotificationConfig) *Notifier {
	n := &Notifier{cfg: cfg, out: os.Stdout}
	if cfg.Type == "desktop" {
		switch runtime.GOOS {
		case "linux":
			n.sender = linuxSender{}
		case "darwin":
			n.sender = macSender{}
		case "windows":
			n.sender = windowsSender{}
		}
	}
	return n
}

// Complete announces a finished run.
func (n *Notifier) Complete(message string) {
	if !n.enabled(n.cfg.OnComplete) {
		return
	}
	fmt.Fprintf(n.out, "\n%s\n", successStyle.Render(message))
	n.desktop("Enrichment complete", message)
}

// Failed announces a failed run.
func (n *Notifier) Failed(message string) {
	if !n.enabled(n.cfg.OnError) {
		return
	}
	fmt.Fprintf(n.out, "\n%s\n", errorStyle.Render(message))
	n.desktop("Enrichment failed", message)
}

// RateLimited announces a rate-limit pause. The leading newline keeps
// the message off any in-place progress line.
func (n *Notifier) RateLimited(wait time.Duration) {
	if !n.enabled(n.cfg.OnRateLimit) {
		return
	}
	message := fmt.Sprintf("rate limit reached, resuming in %s", wait.Round(time.Second))
	fmt.Fprintf(n.out, "\n%s\n", detailStyle.Render(message))
	n.desktop("Enrichment paused", message)
}

func (n *Notifier) enabled(event bool) bool {
	return n.cfg.Enabled && n.cfg.Type != "none" && event
}

// desktop delivery is best effort.
func (n *Notifier) desktop(title, message string) {
	if n.cfg.Type != "desktop" || n.sender == nil {
		return
	}
	_ = n.sender.Send(title, message)
}
