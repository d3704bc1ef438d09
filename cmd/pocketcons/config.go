package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/pocketcons/internal/conservation"
)

// valueKind is the type a config value is stored as.
type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindWorkers
	kindFloat
	kindFormat
)

// secretKeys are masked by config show.
var secretKeys = []string{"scores.s3.secret_access_key"}

// typedKeys lists the non-string keys; every other known key holds a string.
var typedKeys = map[string]valueKind{
	"analyze.format":       kindFormat,
	"analyze.workers":      kindWorkers,
	"analyze.pick":         kindBool,
	"combiner.a":           kindFloat,
	"combiner.b":           kindFloat,
	"combiner.c":           kindFloat,
	"combiner.d":           kindFloat,
	"scores.s3.path_style": kindBool,
}

// configKeys returns every key config set accepts, sorted.
func configKeys() []string {
	keys := slices.Collect(maps.Keys(analyzeKeys))
	keys = slices.AppendSeq(keys, maps.Keys(scoreKeys))
	keys = append(keys, "scores.s3.access_key_id")
	keys = append(keys, secretKeys...)
	slices.Sort(keys)
	return keys
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pocketcons configuration",
		Long: "Show, get, or set configuration values. Config is stored in ~/" + configName + ".\n\n" +
			"Keys:\n  " + strings.Join(configKeys(), "\n  "),
		Example: `  pocketcons config                                  # show all config
  pocketcons config set analyze.format jsd           # default score format
  pocketcons config set scores.s3.bucket conservation # read scores from S3
  pocketcons config get combiner.a                   # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# No configuration set. Config file: ~/"+configName)
		return nil
	}

	for _, key := range secretKeys {
		maskSetting(settings, strings.Split(key, "."))
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// maskSetting replaces the value at path in nested settings, if set.
func maskSetting(settings map[string]any, path []string) {
	for _, p := range path[:len(path)-1] {
		next, ok := settings[p].(map[string]any)
		if !ok {
			return
		}
		settings = next
	}
	last := path[len(path)-1]
	if v, ok := settings[last]; ok && v != "" {
		settings[last] = "********"
	}
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	key = strings.ToLower(key)
	v, err := parseValue(key, value)
	if err != nil {
		return usageError{err}
	}
	viper.Set(key, v)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName)
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if !slices.Contains(configKeys(), strings.ToLower(key)) {
		return usageError{fmt.Errorf("unknown config key %q", key)}
	}
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// parseValue checks value against the kind of key and returns it typed
// for the written YAML.
func parseValue(key, value string) (any, error) {
	if !slices.Contains(configKeys(), key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}

	switch typedKeys[key] {
	case kindBool:
		switch strings.ToLower(value) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("%s: %q is not a boolean", key, value)
	case kindWorkers:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: %q is not a worker count", key, value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", key, value)
		}
		return f, nil
	case kindFormat:
		if _, err := conservation.ParseFormat(value); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return value, nil
}
