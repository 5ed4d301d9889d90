package app

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/source"
	"github.com/authdata/authdata/internal/source/builtin"
)

func init() { //nolint: gochecknoinits
	checkCmd.Flags().BoolVar(&dumpConfig, "dump", false, "print the effective configuration, passwords redacted")

	rootCmd.AddCommand(checkCmd)
}

var (
	dumpConfig bool

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and the source bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := readConfig(); err != nil {
				return err
			}

			bindings, err := builtin.Registry().Bind(&cfg, source.Env{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if dumpConfig {
				dump, err := config.DumpConfigJSON(&cfg)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, dump)
			}

			printBindings(cmd, bindings)

			return nil
		},
	}
)

func printBindings(cmd *cobra.Command, bindings *source.Bindings) {
	out := cmd.OutOrStdout()

	for _, name := range bindings.Names() {
		fmt.Fprintf(out, "source %s (%s)\n", name, bindings.Kind(name))
	}

	for _, group := range []struct {
		label    string
		bindings map[string]string
	}{
		{label: "attribute", bindings: bindings.Attributes()},
		{label: "municipality", bindings: bindings.Municipalities()},
	} {
		keys := make([]string, 0, len(group.bindings))
		for key := range group.bindings {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			fmt.Fprintf(out, "%s %s -> %s\n", group.label, key, group.bindings[key])
		}
	}
}
