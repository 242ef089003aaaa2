// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ablfmt",
	Short: "ablfmt: Progress 4GL / OpenEdge ABL formatter",
	Long: `ablfmt is a line-oriented pretty-printer for Progress 4GL / OpenEdge ABL
source code. It re-indents blocks, normalizes keyword spelling, aligns query
clauses, conditional chains, ASSIGN statements and DEFINE declarations. The
formatter never fails: text it does not understand is kept as written.

Getting started:
  ablfmt fmt file.p            Print a formatted copy of file.p
  ablfmt fmt -w src/...        Format every ABL file under src in place
  ablfmt check file.p          Verify that formatting is safe for file.p
  ablfmt repl                  Try the formatter interactively
  ablfmt lsp                   Run as a language server for editors
  ablfmt keywords              List the keyword normalization table
  ablfmt config                Print the effective configuration

Configuration:
  Settings are read from --config, else .ablfmt.yaml in the working
  directory or $HOME, then from ABLFMT_* environment variables, then from
  command line flags. Keys: indent-size, name-width, condition-gap.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.ablfmt.yaml or $HOME/.ablfmt.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)

	setConfigDefaults(viper.GetViper())
}

func setConfigDefaults(v *viper.Viper) {
	def := formatter.DefaultConfig()
	v.SetDefault("indent-size", def.IndentSize)
	v.SetDefault("name-width", def.NameWidth)
	v.SetDefault("condition-gap", def.ConditionGap)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".ablfmt")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ABLFMT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "ablfmt: %v\n", err)
			os.Exit(2)
		}
	}
}

// loadConfig builds the formatter configuration from v and validates it.
func loadConfig(v *viper.Viper) (*formatter.Config, error) {
	cfg := formatter.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		src := v.ConfigFileUsed()
		if src == "" {
			return nil, errors.Wrap(err, "invalid configuration")
		}
		return nil, errors.Wrapf(err, "invalid configuration in %s", src)
	}
	return cfg, nil
}

// newFormatter returns a formatter for the effective configuration.
func newFormatter() (*formatter.Formatter, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return formatter.New(cfg)
}
