// Package main is the entry point for the docfill binary. It fills DOCX
// templates from the command line and serves the fill endpoint over HTTP.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/docfill/pkg/docfill"
	"github.com/benjaminschreck/docfill/pkg/server"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command with its subcommands
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docfill",
		Short: "Fill DOCX templates",
		Long: `docfill replaces placeholders in Word documents and grows their tables.

Example:
  docfill fill template.docx out.docx --set "{name}=Ada" --rows 2
  docfill serve --addr :8080 --config docfill.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newFillCmd(), newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fill endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML), watched for changes")
	cmd.Flags().StringP("log-level", "l", "", "Log level (debug, info, warn, error, off)")
	return cmd
}

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <template.docx> <output.docx>",
		Short: "Fill a template and write the result",
		Args:  cobra.ExactArgs(2),
		RunE:  runFill,
	}
	cmd.Flags().StringArray("set", nil, "Replacement as placeholder=value (repeatable)")
	cmd.Flags().String("values", "", "YAML file mapping placeholders to values")
	cmd.Flags().Int("rows", 0, "Number of rows to add to each table")
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML)")
	cmd.Flags().StringP("log-level", "l", "", "Log level (debug, info, warn, error, off)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docfill version %s\n", version)
		},
	}
}

// flagOverrides returns the configuration changes requested by flags that
// were set explicitly
func flagOverrides(cmd *cobra.Command) (func(*docfill.Config), error) {
	var addr, logLevel string
	var err error

	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		if addr, err = cmd.Flags().GetString("addr"); err != nil {
			return nil, fmt.Errorf("failed to get addr flag: %w", err)
		}
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		if logLevel, err = cmd.Flags().GetString("log-level"); err != nil {
			return nil, fmt.Errorf("failed to get log-level flag: %w", err)
		}
	}

	return func(c *docfill.Config) {
		if addr != "" {
			c.Server.Addr = addr
		}
		if logLevel != "" {
			c.LogLevel = strings.ToLower(logLevel)
		}
	}, nil
}

// loadConfig builds the effective configuration: defaults, file,
// environment, then flags
func loadConfig(cmd *cobra.Command) (*docfill.Config, func(*docfill.Config), error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	override, err := flagOverrides(cmd)
	if err != nil {
		return nil, nil, err
	}

	config, err := docfill.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	override(config)
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	return config, override, nil
}

// setupLogger installs the global logger at the configured level
func setupLogger(config *docfill.Config, w io.Writer) *docfill.Logger {
	logger := docfill.NewLogger(w, docfill.ParseLogLevel(config.LogLevel))
	docfill.SetLogger(logger)
	return logger
}

func runServe(cmd *cobra.Command, args []string) error {
	config, override, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(config, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := docfill.NewWithConfig(config)
	srv := server.New(engine,
		server.WithLogger(logger),
		server.WithConfigOverride(override),
	)

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		watcher, err := server.NewConfigWatcher(configPath, srv.ReloadConfig, logger)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch %s: %w", configPath, err)
		}
		defer watcher.Stop()
	}

	logger.WithFields(docfill.Fields{
		"version":        version,
		"listing_marker": config.Listing.Marker,
		"log_level":      config.LogLevel,
	}).Info("starting docfill")

	return srv.ListenAndServe(ctx)
}

func runFill(cmd *cobra.Command, args []string) error {
	config, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(config, cmd.ErrOrStderr())

	replacements, err := replacementsFromFlags(cmd)
	if err != nil {
		return err
	}
	rows, err := cmd.Flags().GetInt("rows")
	if err != nil {
		return fmt.Errorf("failed to get rows flag: %w", err)
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return docfill.NewDocumentError(docfill.OpRead, args[0], err)
	}

	ctx := docfill.ContextWithLogger(cmd.Context(), logger.WithField("template", args[0]))
	out, report, err := docfill.NewWithConfig(config).ProcessWithReport(ctx, input, replacements, rows)
	if err != nil {
		return err
	}

	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		return docfill.NewDocumentError(docfill.OpWrite, args[1], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"wrote %s: %d standard and %d listing tables, %d paragraphs substituted, %d skipped, %d rows added\n",
		args[1], report.StandardTables, report.ListingTables,
		report.ParagraphsSubstituted, report.ParagraphsSkipped, report.RowsAdded)
	return nil
}

// replacementsFromFlags merges the --values file with the --set pairs; --set
// wins
func replacementsFromFlags(cmd *cobra.Command) (map[string]string, error) {
	replacements := make(map[string]string)

	valuesPath, err := cmd.Flags().GetString("values")
	if err != nil {
		return nil, fmt.Errorf("failed to get values flag: %w", err)
	}
	if valuesPath != "" {
		fileValues, err := loadValuesFile(valuesPath)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			replacements[k] = v
		}
	}

	pairs, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, fmt.Errorf("failed to get set flag: %w", err)
	}
	setValues, err := parseSetPairs(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range setValues {
		replacements[k] = v
	}

	return replacements, nil
}

// parseSetPairs splits placeholder=value pairs at the first '='
func parseSetPairs(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want placeholder=value", pair)
		}
		values[key] = value
	}
	return values, nil
}

// loadValuesFile reads a flat YAML mapping of placeholders to values
func loadValuesFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file: %w", err)
	}
	return values, nil
}
