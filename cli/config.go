package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/compozy/hybridqa/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(
		configShowCmd(),
		configValidateCmd(),
	)
	return cmd
}

// configShowCmd shows the current configuration with source information
func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration values and their sources",
		Long: `Display the effective configuration. Secrets are redacted.
With --sources, each key reports which layer (default, yaml, cli or env) set it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			showSources, err := cmd.Flags().GetBool("sources")
			if err != nil {
				return err
			}
			return formatConfigOutput(
				cmd.OutOrStdout(),
				appConfig(cmd),
				sourcesFromContext(cmd.Context()),
				format,
				showSources,
			)
		},
	}
	cmd.Flags().StringP("format", "f", "table", "Output format (json, yaml, table)")
	cmd.Flags().BoolP("sources", "s", false, "Show configuration sources")
	return cmd
}

// configValidateCmd reports whether the configuration loaded and validated.
// Loading already validates, so reaching RunE means the config is valid.
func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.NewService().Validate(appConfig(cmd)); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return err
		},
	}
}

// formatConfigOutput formats and outputs configuration based on requested format
func formatConfigOutput(
	w io.Writer,
	cfg *config.Config,
	sources map[string]config.SourceType,
	format string,
	showSources bool,
) error {
	switch format {
	case "json":
		return outputJSON(w, cfg, sources, showSources)
	case "yaml":
		return outputYAML(w, cfg, sources, showSources)
	case "table":
		return outputTable(w, cfg, sources, showSources)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func outputJSON(w io.Writer, cfg *config.Config, sources map[string]config.SourceType, showSources bool) error {
	output := map[string]any{"config": flattenConfig(cfg)}
	if showSources && len(sources) > 0 {
		output["sources"] = sources
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputYAML(w io.Writer, cfg *config.Config, sources map[string]config.SourceType, showSources bool) error {
	output := map[string]any{"config": flattenConfig(cfg)}
	if showSources && len(sources) > 0 {
		output["sources"] = sources
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

func outputTable(w io.Writer, cfg *config.Config, sources map[string]config.SourceType, showSources bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	flatMap := flattenConfig(cfg)
	keys := make([]string, 0, len(flatMap))
	for k := range flatMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if showSources {
		fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
		fmt.Fprintln(tw, "---\t-----\t------")
	} else {
		fmt.Fprintln(tw, "KEY\tVALUE")
		fmt.Fprintln(tw, "---\t-----")
	}
	for _, key := range keys {
		if !showSources {
			fmt.Fprintf(tw, "%s\t%s\n", key, flatMap[key])
			continue
		}
		source := sources[key]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, flatMap[key], source)
	}
	return tw.Flush()
}

// flattenConfig renders every leaf as a string keyed by its koanf path.
// Sensitive values print through their redacting String method.
func flattenConfig(cfg *config.Config) map[string]string {
	result := make(map[string]string)
	flattenValue("", reflect.ValueOf(cfg).Elem(), result)
	return result
}

var durationType = reflect.TypeOf(time.Duration(0))

func flattenValue(prefix string, val reflect.Value, result map[string]string) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("koanf")
		if !field.IsExported() || tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		fieldVal := val.Field(i)
		if fieldVal.Kind() == reflect.Struct && field.Type != durationType {
			flattenValue(key, fieldVal, result)
			continue
		}
		result[key] = fmt.Sprint(fieldVal.Interface())
	}
}
