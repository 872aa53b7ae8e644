// Package main is the entry point for the bannerd banner daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/bannerd/internal/audio"
	"github.com/jmylchreest/bannerd/internal/clock"
	"github.com/jmylchreest/bannerd/internal/config"
	"github.com/jmylchreest/bannerd/internal/daemon"
	"github.com/jmylchreest/bannerd/internal/dbus"
	"github.com/jmylchreest/bannerd/internal/gtkhost"
	"github.com/jmylchreest/bannerd/internal/presenter"
	"github.com/jmylchreest/bannerd/internal/queue"
	"github.com/jmylchreest/bannerd/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.bannerd"
	appName = "bannerd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/bannerd/bannerd.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("bannerd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	run(*configPath, logger)
}

// run runs bannerd as the session's notification daemon.
func run(configPath string, logger *slog.Logger) {
	logger.Info("starting bannerd", "version", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app := adw.NewApplication(appID, 0)

	// Shared state between the GTK main loop and signal handlers
	var (
		dbusServer       *dbus.NotificationServer
		tree             *gtkhost.Tree
		banners          *queue.Queue
		themeLoader      *theme.Loader
		announcer        *audio.Announcer
		configWatcher    *daemon.ConfigWatcher
		internalNotifier *daemon.InternalNotifier
		running          atomic.Bool
	)

	stop := func() {
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if banners != nil {
			banners.Stop()
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
		if announcer != nil {
			announcer.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		themeLoader = theme.NewLoader(logger)
		themeLoader.LoadTheme(cfg.Theme.Name)
		themeLoader.Apply()

		tree = gtkhost.NewTree(&app.Application, cfg.Display, logger)
		tree.SetColorScheme(theme.SchemeClass(cfg.Theme.ColorScheme))

		internalNotifier = daemon.NewInternalNotifier(clock.Real(), logger)

		announcer = audio.NewAnnouncer(cfg.Audio, logger)
		announcer.SetErrorHandler(internalNotifier.NotifyAudioError)

		banners = queue.New(presenter.Environment{
			Tree:         tree,
			Transitioner: tree,
			Dimmer:       tree,
			Announcer:    tree.Announcer(announcer),
			Clock:        clock.Real(),
			Dispatch:     gtkhost.Dispatch,
			Logger:       logger,
		}, cfg.QueueOptions(), logger)

		dbusServer = dbus.NewNotificationServer(logger)
		dbusServer.SetServerInfo(dbus.ServerInfo{
			Name:        appName,
			Vendor:      "jmylchreest",
			Version:     version,
			SpecVersion: "1.2",
		})

		d := daemon.New(daemon.Options{
			Config:   cfg,
			Queue:    banners,
			Signals:  dbusServer,
			Dispatch: gtkhost.Dispatch,
			Clock:    clock.Real(),
			Logger:   logger,
		})
		dbusServer.SetNotifyHandler(d.HandleNotify)
		dbusServer.SetCloseHandler(d.HandleClose)
		internalNotifier.SetNotifyHandler(dbusServer.NotifyInternal)

		if err := dbusServer.Start(); err != nil {
			logger.Error("failed to start D-Bus server", "error", err)
			app.Quit()
			return
		}

		configWatcher = daemon.NewConfigWatcher(configPath, logger)
		configWatcher.SetReloadCallback(func(newConfig *config.Config) {
			glib.IdleAdd(func() {
				d.ApplyConfig(newConfig)
				tree.SetDisplay(newConfig.Display)
				tree.SetColorScheme(theme.SchemeClass(newConfig.Theme.ColorScheme))
				announcer.UpdateConfig(newConfig.Audio)
				if newConfig.Theme.Name != cfg.Theme.Name {
					themeLoader.LoadTheme(newConfig.Theme.Name)
				}
				cfg = newConfig
				internalNotifier.NotifyConfigReloaded()
			})
		})
		configWatcher.SetErrorCallback(internalNotifier.NotifyConfigError)
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		logger.Info("bannerd ready", "dbus_interface", dbus.DBusInterface)

		// GTK apps quit when all windows are closed
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stop()
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("bannerd stopped")
}
