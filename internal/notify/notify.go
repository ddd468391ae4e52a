package notify

import (
	"os/exec"

	"github.com/charmbracelet/log"
)

const appName = "Hyprcaption"

type MessageType int

const (
	CaptionStarted MessageType = iota
	CaptionPaused
	CaptionResumed
	ConfigReloaded
	RecognizerFailed
)

type Message struct {
	Title   string
	Body    string
	IsError bool
}

// MessageDef ties a message type to its config key and default text.
type MessageDef struct {
	Type         MessageType
	ConfigKey    string
	DefaultTitle string
	DefaultBody  string
	IsError      bool
}

var MessageDefs = []MessageDef{
	{Type: CaptionStarted, ConfigKey: "caption_started", DefaultTitle: appName, DefaultBody: "Captions started"},
	{Type: CaptionPaused, ConfigKey: "caption_paused", DefaultTitle: appName, DefaultBody: "Captions paused"},
	{Type: CaptionResumed, ConfigKey: "caption_resumed", DefaultTitle: appName, DefaultBody: "Captions resumed"},
	{Type: ConfigReloaded, ConfigKey: "config_reloaded", DefaultTitle: appName, DefaultBody: "Configuration reloaded"},
	{Type: RecognizerFailed, ConfigKey: "recognizer_failed", DefaultTitle: appName, DefaultBody: "Speech recognizer stopped", IsError: true},
}

// DefaultMessages returns every message with its default text.
func DefaultMessages() map[MessageType]Message {
	messages := make(map[MessageType]Message, len(MessageDefs))
	for _, def := range MessageDefs {
		messages[def.Type] = Message{Title: def.DefaultTitle, Body: def.DefaultBody, IsError: def.IsError}
	}
	return messages
}

type Notifier interface {
	Send(mt MessageType)
	Error(msg string)
}

// New picks a notifier by config name. Unknown names, "none" and a disabled
// config all yield Nop.
func New(enabled bool, kind string, messages map[MessageType]Message) Notifier {
	if !enabled {
		return Nop{}
	}
	if messages == nil {
		messages = DefaultMessages()
	}
	switch kind {
	case "desktop":
		return Desktop{Messages: messages}
	case "log":
		return Log{Messages: messages}
	default:
		return Nop{}
	}
}

var execCommand = exec.Command

type Desktop struct {
	Messages map[MessageType]Message
}

func (d Desktop) Send(mt MessageType) {
	msg, ok := d.Messages[mt]
	if !ok {
		return
	}
	args := []string{"-a", appName}
	if msg.IsError {
		args = append(args, "-u", "critical")
	}
	args = append(args, msg.Title, msg.Body)
	if err := execCommand("notify-send", args...).Run(); err != nil {
		log.Warnf("Failed to send notification: %v", err)
	}
}

func (Desktop) Error(msg string) {
	if err := execCommand("notify-send", "-a", appName, "-u", "critical", appName, msg).Run(); err != nil {
		log.Warnf("Failed to send error notification: %v", err)
	}
}

type Log struct {
	Messages map[MessageType]Message
}

func (l Log) Send(mt MessageType) {
	msg, ok := l.Messages[mt]
	if !ok {
		return
	}
	if msg.IsError {
		log.Errorf("Notification: %s: %s", msg.Title, msg.Body)
		return
	}
	log.Infof("Notification: %s: %s", msg.Title, msg.Body)
}

func (Log) Error(msg string) {
	log.Errorf("Notification: %s: %s", appName, msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Send(MessageType) {}
func (Nop) Error(string)     {}
