package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doITmagic/october-code-mcp/internal/config"
	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/healthcheck"
	"github.com/doITmagic/october-code-mcp/internal/tools"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

func newRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "october-index",
		Short: "Index and query October CMS projects from the command line",
		Long: `october-index builds the same in-memory index the MCP server uses:
owners (modules, plugins, themes, app), their models, controllers,
behaviors, components, widgets, console commands and migrations.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "october-mcp.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().Bool("json", false, "Print machine-readable output")

	indexCmd := &cobra.Command{
		Use:   "index <path>",
		Short: "Index the project containing path and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runIndex,
	}

	findCmd := &cobra.Command{
		Use:   "find <path>",
		Short: "Identify the entity defined in a PHP file, or named by --fqn",
		Args:  cobra.ExactArgs(1),
		RunE:  runFind,
	}
	findCmd.Flags().String("fqn", "", "Fully qualified class name to look up")

	listCmd := &cobra.Command{
		Use:   "list <path>",
		Short: "List indexed entities",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
	listCmd.Flags().StringP("kind", "k", "", "Entity kind (model, controller, component, migration, ...)")
	listCmd.Flags().StringP("owner", "o", "", "Owner: plugin code, module name or app")

	watchCmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Index the project and keep the index current until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().Int("debounce", 0, "Debounce in milliseconds (default: from config)")

	doctorCmd := &cobra.Command{
		Use:   "doctor <path>",
		Short: "Check PHP, project root, platform version and plugins directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runDoctor,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "october-index %s\n", version)
		},
	}

	rootCmd.AddCommand(indexCmd, findCmd, listCmd, watchCmd, doctorCmd, newSetupCommand(), versionCmd)
	return rootCmd
}

// loadConfig reads --config; a missing file yields the defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// baseArgs are the tool arguments shared by every command
func baseArgs(cmd *cobra.Command, path string) (map[string]interface{}, error) {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, fmt.Errorf("failed to read --json flag: %w", err)
	}
	args := map[string]interface{}{"file_path": path}
	if asJSON {
		args["output_format"] = "json"
	}
	return args, nil
}

// runTool opens a manager without a watcher and runs one query tool
func runTool(cmd *cobra.Command, newTool func(*workspace.Manager) tools.Tool, args map[string]interface{}) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Watch.Enabled = false

	wm := workspace.NewManager(cfg)
	defer wm.CloseAll()

	out, err := newTool(wm).Execute(cmd.Context(), args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	toolArgs, err := baseArgs(cmd, args[0])
	if err != nil {
		return err
	}
	return runTool(cmd, func(wm *workspace.Manager) tools.Tool { return tools.NewOpenProjectTool(wm) }, toolArgs)
}

func runFind(cmd *cobra.Command, args []string) error {
	toolArgs, err := baseArgs(cmd, args[0])
	if err != nil {
		return err
	}
	fqn, err := cmd.Flags().GetString("fqn")
	if err != nil {
		return fmt.Errorf("failed to read --fqn flag: %w", err)
	}
	if fqn != "" {
		toolArgs["fqn"] = fqn
	}
	return runTool(cmd, func(wm *workspace.Manager) tools.Tool { return tools.NewFindEntityTool(wm) }, toolArgs)
}

func runList(cmd *cobra.Command, args []string) error {
	toolArgs, err := baseArgs(cmd, args[0])
	if err != nil {
		return err
	}
	for _, name := range []string{"kind", "owner"} {
		value, err := cmd.Flags().GetString(name)
		if err != nil {
			return fmt.Errorf("failed to read --%s flag: %w", name, err)
		}
		if value != "" {
			toolArgs[name] = value
		}
	}
	return runTool(cmd, func(wm *workspace.Manager) tools.Tool { return tools.NewListEntitiesTool(wm) }, toolArgs)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Watch.Enabled = true
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil && debounce > 0 {
		cfg.Watch.DebounceMs = debounce
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wm := workspace.NewManager(cfg)
	defer wm.CloseAll()

	info, err := wm.OpenPath(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (%s): %d owners, %d entities. Press Ctrl+C to stop.\n",
		info.Root, info.Version, info.Stats.Owners, info.Stats.Entities)

	<-ctx.Done()
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	results := healthcheck.CheckAll(cfg, files.NewOSFileSystem(cfg.Project.Exclude...), args[0])
	fmt.Fprint(cmd.OutOrStdout(), healthcheck.FormatResults(results))

	// a missing PHP binary does not block indexing
	for _, r := range results {
		if r.Status != "ok" && r.Service != "PHP" {
			fmt.Fprint(cmd.OutOrStdout(), healthcheck.GetRemediation(results))
			return fmt.Errorf("%s check failed", r.Service)
		}
	}
	return nil
}
