package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bannerd/internal/dbus"
)

var closeCmd = &cobra.Command{
	Use:   "close ID...",
	Short: "Close banners by id",
	Long: `Close banners by the id printed by "banner send".

A visible banner animates out; a queued one is dropped before it is
shown. Either way the sender receives NotificationClosed with reason
"closed".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	ids := make([]uint32, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid banner id %q", arg)
		}
		ids = append(ids, uint32(id))
	}

	client, err := dbus.Dial()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	for _, id := range ids {
		if err := client.CloseNotification(ctx, id); err != nil {
			return err
		}
		logger.Debug("close requested", "id", id)
	}
	return nil
}
