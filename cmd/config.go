// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective formatting configuration",
	Long: `Print the formatting configuration ablfmt would use, as YAML.

The output merges the defaults, the configuration file, ABLFMT_*
environment variables and flags. It is a valid .ablfmt.yaml, so

  ablfmt config > .ablfmt.yaml

pins the current settings for a project.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := writeConfig(cmd.OutOrStdout(), cfg, viper.ConfigFileUsed()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// writeConfig writes cfg as YAML. A non-empty source is noted in a leading
// comment.
func writeConfig(w io.Writer, cfg *formatter.Config, source string) error {
	if source != "" {
		if _, err := fmt.Fprintf(w, "# read from %s\n", source); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "encoding configuration")
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(configCmd)
}
