package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bannerd/internal/tuihost"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the banner lifecycle in the terminal",
	Long: `Run an interactive terminal demo of banner presentation.

The demo uses the configured presentation, dim and queue settings with a
terminal host instead of desktop windows. It has a root screen with top
and bottom bars, a content pane that can be made the preferred container
and a modal screen.

Key bindings:
  t/b/c       Top, bottom or center banner
  w           Banner in its own overlay window
  B           Burst of three banners, one per urgency
  u           Cycle duration mode
  d           Cycle dim mode
  p           Toggle the pane as preferred container
  m           Present or dismiss the modal screen
  h/f         Toggle top and bottom bars
  enter, x    Dismiss the visible banner
  esc         Tap the dimmed background
  a           Hide everything
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; debug logs would tear it.
	demoLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if globalOpts.verbose {
		demoLogger = logger
	}
	return tuihost.Run(tuihost.DemoOptions{
		Config: cfg,
		Logger: demoLogger,
	})
}
