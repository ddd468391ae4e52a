// Package deps reports on the external programs hyprcaption shells out to.
package deps

import (
	"os/exec"
	"strings"

	"github.com/leonardotrapani/hyprcaption/internal/config"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Purpose   string
	Installed bool
	Path      string
	Version   string
}

// Tool is an external program and the flag that prints its version.
type Tool struct {
	Name        string
	VersionFlag string
	Purpose     string
}

var (
	PWRecord   = Tool{Name: "pw-record", VersionFlag: "--version", Purpose: "microphone capture for the openai recognizer"}
	PWCli      = Tool{Name: "pw-cli", VersionFlag: "--version", Purpose: "PipeWire availability check"}
	NotifySend = Tool{Name: "notify-send", VersionFlag: "--version", Purpose: "desktop notifications"}
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Check looks tool up on PATH and reads the first line of its version output.
func Check(tool Tool) Status {
	status := Status{Name: tool.Name, Purpose: tool.Purpose}

	path, err := lookPath(tool.Name)
	if err != nil {
		return status
	}
	status.Installed = true
	status.Path = path

	if tool.VersionFlag == "" {
		return status
	}
	output, err := exec.Command(path, tool.VersionFlag).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}
	return status
}

// Required lists the tools cfg needs at runtime.
func Required(cfg *config.Config) []Tool {
	var tools []Tool
	if cfg.Recognizer.Source == config.SourceOpenAI {
		tools = append(tools, PWRecord, PWCli)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Type == "desktop" {
		tools = append(tools, NotifySend)
	}
	return tools
}

// CheckAll checks every tool cfg needs. ok is false when any is missing.
func CheckAll(cfg *config.Config) (statuses []Status, ok bool) {
	ok = true
	for _, tool := range Required(cfg) {
		s := Check(tool)
		if !s.Installed {
			ok = false
		}
		statuses = append(statuses, s)
	}
	return statuses, ok
}
