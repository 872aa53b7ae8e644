package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/bannerd/internal/config"
)

var configOpts struct {
	format string
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the daemon configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration bannerd would use: the defaults overlaid by
the config file.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file and summarize the banner
presentation it produces. Exits non-zero when the file is invalid.`,
	Args: cobra.NoArgs,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configCheckCmd)

	configShowCmd.Flags().StringVarP(&configOpts.format, "format", "f", "toml",
		"Output format (toml, yaml, json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeConfig(cmd.OutOrStdout(), cfg, configOpts.format)
}

// writeConfig encodes cfg to w in format.
func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "toml", "":
		return toml.NewEncoder(w).Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown format %q (valid: toml, yaml, json)", format)
	}
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return checkConfig(cmd.OutOrStdout(), cfg)
}

// checkConfig reports the presentation a valid cfg produces.
func checkConfig(w io.Writer, cfg *config.Config) error {
	p, err := cfg.ToPresenterConfig()
	if err != nil {
		return fmt.Errorf("invalid presentation: %w", err)
	}

	target := p.Attachment.Kind.String()
	if cfg.Presentation.Attachment != "automatic" {
		target += " (" + p.Attachment.Level.String() + ")"
	}
	fmt.Fprintln(w, "configuration is valid")
	fmt.Fprintf(w, "  style:      %s\n", p.Style)
	fmt.Fprintf(w, "  duration:   %s\n", p.Duration.Kind)
	fmt.Fprintf(w, "  attachment: %s\n", target)
	fmt.Fprintf(w, "  dim:        %s\n", p.Dim.Kind)
	fmt.Fprintf(w, "  queue:      max %d, pause %s\n", cfg.Queue.MaxQueued, cfg.Queue.PauseBetween.Duration())
	return nil
}
