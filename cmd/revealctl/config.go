package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	var (
		path     string
		compact  bool
		manifest bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective sequence config",
		Long: `Print the sequence config as YAML, suitable as a starting point for
SEQUENCE_CONFIG. With --manifest, print the JSON the server returns from
/api/sequence instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadTimelineConfig(&timelineOptions{config: path, compact: compact})
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if manifest {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg.Manifest())
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "sequence config YAML to load over the defaults")
	cmd.Flags().BoolVar(&compact, "compact", false, "use the compact education card delay")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "print the browser manifest as JSON")
	return cmd
}
