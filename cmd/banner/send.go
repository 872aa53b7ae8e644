package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/bannerd/internal/dbus"
	"github.com/jmylchreest/bannerd/internal/model"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

var sendOpts struct {
	app      string
	icon     string
	style    string
	duration string
	dim      string
	level    string
	tag      string
	urgency  string
	replaces uint32
	timeout  time.Duration
	wait     bool
	actions  []string
}

var sendCmd = &cobra.Command{
	Use:   "send TITLE [BODY]",
	Short: "Show a banner",
	Long: `Send a banner to the running daemon and print its id.

Presentation hints override the daemon's configured defaults for this
banner only.

Examples:
  # A plain banner
  banner send "Build finished"

  # A centered banner that stays until it is tapped, over a dimmed screen
  banner send "Deploy?" "Production rollout is ready" --style center --duration forever --dim color

  # Replace the previous banner with the same tag
  banner send "Uploading 40%" --tag upload

  # Wait for the banner to close and report why
  banner send "Reboot required" --urgency critical --wait`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.app, "app", "a", "banner",
		"Application name")
	sendCmd.Flags().StringVarP(&sendOpts.icon, "icon", "i", "",
		"Icon name or path")
	sendCmd.Flags().StringVarP(&sendOpts.style, "style", "s", "",
		"Presentation style (top, bottom, center)")
	sendCmd.Flags().StringVarP(&sendOpts.duration, "duration", "d", "",
		"Duration mode (automatic, seconds, forever, indefinite) or a duration like 8s")
	sendCmd.Flags().StringVar(&sendOpts.dim, "dim", "",
		"Dim mode (none, color, blur)")
	sendCmd.Flags().StringVar(&sendOpts.level, "level", "",
		"Window level (background, bottom, top, overlay)")
	sendCmd.Flags().StringVarP(&sendOpts.tag, "tag", "t", "",
		"Identity tag; banners with the same tag replace each other")
	sendCmd.Flags().StringVarP(&sendOpts.urgency, "urgency", "u", "normal",
		"Urgency (low, normal, critical)")
	sendCmd.Flags().Uint32VarP(&sendOpts.replaces, "replaces", "r", 0,
		"Id of the banner to replace")
	sendCmd.Flags().DurationVar(&sendOpts.timeout, "timeout", 0,
		"Expire timeout requested from the daemon (0 leaves it to the daemon)")
	sendCmd.Flags().BoolVarP(&sendOpts.wait, "wait", "w", false,
		"Wait until the banner closes and print why")
	sendCmd.Flags().StringSliceVar(&sendOpts.actions, "action", nil,
		"Action as key=label; the key default is invoked by tapping the banner")
}

// buildRequest turns the arguments and flags into a Notify call.
func buildRequest(args []string) (dbus.Request, error) {
	req := dbus.Request{
		AppName:       sendOpts.app,
		AppIcon:       sendOpts.icon,
		Summary:       args[0],
		ReplacesID:    sendOpts.replaces,
		ExpireTimeout: -1,
	}
	if len(args) > 1 {
		req.Body = args[1]
	}
	if sendOpts.timeout > 0 {
		req.ExpireTimeout = int32(sendOpts.timeout.Milliseconds())
	}

	urgency, err := model.ParseUrgency(sendOpts.urgency)
	if err != nil {
		return req, err
	}
	req.SetUrgency(urgency)

	if sendOpts.style != "" {
		if _, err := presenter.ParseStyle(sendOpts.style); err != nil {
			return req, err
		}
	}
	if sendOpts.level != "" {
		if _, err := presenter.ParseWindowLevel(sendOpts.level); err != nil {
			return req, err
		}
	}

	req.SetHint(dbus.HintStyle, sendOpts.style)
	req.SetHint(dbus.HintDuration, sendOpts.duration)
	req.SetHint(dbus.HintDim, sendOpts.dim)
	req.SetHint(dbus.HintLevel, sendOpts.level)
	req.SetHint(dbus.HintTag, sendOpts.tag)

	for _, a := range sendOpts.actions {
		key, label, ok := cutAction(a)
		if !ok {
			return req, fmt.Errorf("invalid action %q, expected key=label", a)
		}
		req.Actions = append(req.Actions, key, label)
	}
	return req, nil
}

// cutAction splits "key=label". A bare key is its own label.
func cutAction(s string) (key, label string, ok bool) {
	key, label, found := strings.Cut(s, "=")
	if !found {
		label = key
	}
	return key, label, key != ""
}

func runSend(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(args)
	if err != nil {
		return err
	}

	client, err := dbus.Dial()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	// Subscribe before sending so a banner that closes at once is seen.
	var watcher *dbus.Watcher
	if sendOpts.wait {
		watcher, err = client.Watch()
		if err != nil {
			return err
		}
		defer watcher.Stop()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	id, err := client.Notify(ctx, req)
	cancel()
	if err != nil {
		return err
	}
	logger.Debug("banner sent", "id", id)
	fmt.Fprintln(cmd.OutOrStdout(), id)

	if watcher == nil {
		return nil
	}

	sent := time.Now()
	closed, err := watcher.Wait(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), describeClosed(closed, sent, time.Now()))
	return nil
}

// describeClosed renders how a banner closed, for example
// "dismissed 3 seconds after sending".
func describeClosed(c dbus.Closed, sent, now time.Time) string {
	s := c.Reason.String() + " " + humanize.RelTime(sent, now, "after sending", "before sending")
	if c.Action != "" {
		s += fmt.Sprintf(" (action %q)", c.Action)
	}
	return s
}
