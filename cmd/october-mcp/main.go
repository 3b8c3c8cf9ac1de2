package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/doITmagic/october-code-mcp/internal/config"
	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/healthcheck"
	"github.com/doITmagic/october-code-mcp/internal/tools"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// OpenProjectInput defines the typed input for the open_project tool.
type OpenProjectInput struct {
	FilePath string `json:"file_path" jsonschema:"any path inside the October CMS project"`
	Reload   bool   `json:"reload,omitempty" jsonschema:"re-index an already open project"`
}

// OpenProjectOutput defines the typed output for the open_project tool.
type OpenProjectOutput struct {
	Summary string `json:"summary"`
}

func main() {
	configPath := flag.String("config", "october-mcp.yaml", "Path to configuration file")
	logLevelFlag := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config/env)")
	noWatchFlag := flag.Bool("no-watch", false, "Disable file watching")
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	healthFlag := flag.String("health", "", "Run health checks for the project containing this path and exit")

	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("October Code MCP Server\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Commit:     %s\n", Commit)
		fmt.Printf("Build Date: %s\n", Date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to load config file %s, using defaults: %v\n", *configPath, err)
		cfg = config.DefaultConfig()
	}

	// CLI overrides (highest precedence)
	if *logLevelFlag != "" {
		cfg.Logging.Level = *logLevelFlag
	}
	if *noWatchFlag {
		cfg.Watch.Enabled = false
	}
	initLogger(cfg.Logging.Level, cfg.Logging.Path)

	if *healthFlag != "" {
		results := healthcheck.CheckAll(cfg, files.NewOSFileSystem(cfg.Project.Exclude...), *healthFlag)
		fmt.Fprint(os.Stderr, healthcheck.FormatResults(results))
		if !healthcheck.Healthy(results) {
			fmt.Fprintln(os.Stderr, healthcheck.GetRemediation(results))
			os.Exit(1)
		}
		os.Exit(0)
	}

	workspaceManager := workspace.NewManager(cfg)
	defer workspaceManager.CloseAll()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, root := range cfg.Server.Projects {
		info, err := workspaceManager.Open(ctx, root)
		if err != nil {
			logger.Error("Failed to open project %s: %v", root, err)
			continue
		}
		logger.Info("Opened %s (%s): %d owners, %d entities", info.Root, info.Version, info.Stats.Owners, info.Stats.Entities)
	}

	name := cfg.Server.Name
	if name == "" {
		name = "october-code"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: Version,
	}, nil)

	for _, tool := range tools.All(workspaceManager) {
		if open, ok := tool.(*tools.OpenProjectTool); ok {
			registerOpenProjectToolTyped(server, open)
			continue
		}
		registerTool(server, tool)
	}

	logger.Info("October Code MCP server started (stdio mode)")
	logger.Debug("Watching: %t, plugins dir: %s, themes dir: %s", cfg.Watch.Enabled, cfg.Project.PluginsDir, cfg.Project.ThemesDir)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server terminated: %v", err)
	}
}

// registerOpenProjectToolTyped registers open_project through the typed
// ToolHandlerFor API of the MCP Go SDK.
func registerOpenProjectToolTyped(server *mcp.Server, tool *tools.OpenProjectTool) {
	mcp.AddTool[OpenProjectInput, OpenProjectOutput](server, &mcp.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
	}, func(ctx context.Context, req *mcp.CallToolRequest, input OpenProjectInput) (*mcp.CallToolResult, OpenProjectOutput, error) {
		args := map[string]interface{}{
			"file_path": input.FilePath,
		}
		if input.Reload {
			args["reload"] = true
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return nil, OpenProjectOutput{}, err
		}
		return nil, OpenProjectOutput{Summary: result}, nil
	})
}

func registerTool(server *mcp.Server, tool tools.Tool) {
	server.AddTool(&mcp.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: tool.InputSchema(),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]interface{}{}
		if req.Params != nil && req.Params.Arguments != nil {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		logger.Debug("%s %v", tool.Name(), args)

		result, err := tool.Execute(ctx, args)
		if err != nil {
			logger.Warn("%s failed: %v", tool.Name(), err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: err.Error()},
				},
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: result},
			},
		}, nil
	})
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `October Code MCP Server - October CMS project index over MCP

USAGE:
    october-mcp [OPTIONS]

EXAMPLES:
    # Start with default configuration
    october-mcp

    # Use custom config file
    october-mcp -config my-config.yaml

    # Debug logging, no file watcher
    october-mcp -log-level debug -no-watch

    # Check a project and exit
    october-mcp -health /var/www/site

OPTIONS:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
CONFIGURATION PRECEDENCE:
    CLI flags > Environment variables > config file > defaults

ENVIRONMENT VARIABLES:
    OCTOBER_PLUGINS_DIR             Plugins directory name (default: plugins)
    OCTOBER_THEMES_DIR              Themes directory name (default: themes)
    OCTOBER_STRUCTURED_CONTROLLERS  Use controllers/<name>/config/ for behavior config (default: false)
    OCTOBER_EXCLUDE                 Comma-separated directory names or globs to skip
    OCTOBER_WATCH                   Enable the file watcher (default: true)

    Logging:
    OCTOBER_LOG_LEVEL               Log level: debug, info, warn, error (default: info)
    OCTOBER_LOG_FILE                Also append logs to this file
`)
}
