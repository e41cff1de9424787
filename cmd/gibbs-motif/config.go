package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/gibbs-motif/internal/config"
)

const configFileName = ".gibbs-motif.yaml"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the search defaults",
		Long: `Show the effective search, output and history settings, or change them in
~/` + configFileName + `. Values given on the command line or through
` + config.EnvPrefix + `_* environment variables still take precedence.`,
		Example: `  gibbs-motif config
  gibbs-motif config set search.trials 500
  gibbs-motif config set search.strategy resample
  gibbs-motif config set history.enabled true
  gibbs-motif config get search.k-max`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in the config file",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a setting",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	})

	return cmd
}

func runConfigShow() error {
	out, err := yaml.Marshal(config.Settings(viper.GetViper()))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Printf("# %s\n", f)
	} else {
		fmt.Printf("# defaults (no ~/%s)\n", configFileName)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	parsed, err := config.ParseValue(key, value)
	if err != nil {
		return usageError{err}
	}

	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, configFileName)
	}

	viper.Set(key, parsed)
	if err := config.WriteFile(viper.GetViper(), path); err != nil {
		return err
	}
	fmt.Printf("%s = %v (%s)\n", key, parsed, path)
	return nil
}

func runConfigGet(key string) error {
	if !config.IsKey(key) {
		return usageError{fmt.Errorf("%w %q", config.ErrUnknownKey, key)}
	}
	fmt.Println(viper.Get(key))
	return nil
}
