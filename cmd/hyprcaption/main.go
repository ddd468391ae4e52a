package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/leonardotrapani/hyprcaption/internal/bus"
	"github.com/leonardotrapani/hyprcaption/internal/config"
	"github.com/leonardotrapani/hyprcaption/internal/daemon"
	"github.com/leonardotrapani/hyprcaption/internal/deps"
	"github.com/leonardotrapani/hyprcaption/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "hyprcaption",
	Short:        "Live speech captions for the VRChat chatbox",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		pauseCmd(),
		clearCmd(),
		sayCmd(),
		liveCmd(),
		watchCmd(),
		previewCmd(),
		configureCmd(),
		doctorCmd(),
	)
}

// loadManager opens the config at path, or the default location when empty.
func loadManager(path string) (*config.Manager, error) {
	if path == "" {
		return config.NewManager()
	}
	return config.NewManagerForFile(path)
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadManager(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log.SetLevel(mgr.GetConfig().LogLevel())

			d, err := daemon.New(mgr, daemon.Options{})
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/hyprcaption/config.toml)")
	return cmd
}

// request sends one command to the daemon and prints its reply. An ERR reply
// is returned as an error.
func request(cmd byte, payload, action string) error {
	resp, err := bus.SendPayload(cmd, payload)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if strings.HasPrefix(resp, "ERR") {
		return errors.New(resp)
	}
	fmt.Println(resp)
	return nil
}

func simpleCmd(use, short string, cmd byte, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return request(cmd, "", action)
		},
	}
}

func statusCmd() *cobra.Command {
	return simpleCmd("status", "Show caption engine and delivery status", bus.CmdStatus, "get status")
}

func versionCmd() *cobra.Command {
	return simpleCmd("version", "Get protocol version", bus.CmdVersion, "get version")
}

func stopCmd() *cobra.Command {
	return simpleCmd("stop", "Stop the daemon", bus.CmdQuit, "stop daemon")
}

func pauseCmd() *cobra.Command {
	return simpleCmd("pause", "Pause or resume caption delivery", bus.CmdPause, "toggle delivery")
}

func clearCmd() *cobra.Command {
	return simpleCmd("clear", "Drop all queued and displayed caption text", bus.CmdClear, "clear captions")
}

func sayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say [text...]",
		Short: "Queue finished text for display",
		Long: `Queue finished text for display, as if a recognizer had committed it.
Without arguments the current live text is committed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				return request(bus.CmdFinal, "", "finalize text")
			}
			return request(bus.CmdFinal, text, "send text")
		},
	}
}

func liveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live <text...>",
		Short: "Replace the in-progress (live) caption text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(bus.CmdLive, strings.Join(args, " "), "set live text")
		},
	}
}

func watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of the daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunMonitor(func() (string, error) {
				return bus.SendCommand(bus.CmdStatus)
			}, interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "status poll interval")
	return cmd
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration editor for hyprcaption.
This walks through:
- Caption buffering (display budget, dequeue policy, word lifetimes)
- Output transport and delivery rate
- Speech recognizer source
- Notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration editor error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved successfully!"))
	if _, err := bus.SendCommand(bus.CmdStatus); err == nil {
		fmt.Println("The running daemon picks up the change automatically.")
	} else {
		fmt.Println("Start the daemon with: hyprcaption serve")
	}

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
	return nil
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the external programs the current config needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				fmt.Println(tui.StyleError.Render("Config: " + err.Error()))
			} else {
				fmt.Println(tui.StyleSuccess.Render("Config: ok"))
			}

			statuses, ok := deps.CheckAll(cfg)
			if len(statuses) == 0 {
				fmt.Println(tui.StyleMuted.Render("No external programs needed."))
			}
			for i, s := range statuses {
				fmt.Println()
				fmt.Printf("[%d/%d] %s (%s)\n", i+1, len(statuses), s.Name, s.Purpose)
				if !s.Installed {
					fmt.Printf("  %s not found on PATH\n", tui.StyleError.Render("FAIL:"))
					continue
				}
				fmt.Printf("  %s %s %s\n", tui.StyleSuccess.Render("PASS:"), s.Path, tui.StyleMuted.Render(s.Version))
			}
			if !ok {
				return fmt.Errorf("missing required programs")
			}
			return nil
		},
	}
}
