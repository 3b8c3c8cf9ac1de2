package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

const serverKey = "october-code"

// clientConfigs are the MCP client config files, relative to the home directory
var clientConfigs = map[string]string{
	"windsurf": ".codeium/windsurf/mcp_config.json",
	"cursor":   ".cursor/mcp.json",
}

func newSetupCommand() *cobra.Command {
	clients := make([]string, 0, len(clientConfigs))
	for name := range clientConfigs {
		clients = append(clients, name)
	}
	sort.Strings(clients)

	setupCmd := &cobra.Command{
		Use:   "setup <client>",
		Short: "Register october-mcp in an MCP client config (" + strings.Join(clients, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE:  runSetup,
	}
	setupCmd.Flags().String("file", "", "Config file to update (default: the client's file in $HOME)")
	setupCmd.Flags().String("binary", "", "Path to the october-mcp binary (default: found next to october-index or on PATH)")
	return setupCmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to read --file flag: %w", err)
	}
	if path == "" {
		rel, ok := clientConfigs[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown MCP client %q", args[0])
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not determine HOME directory: %w", err)
		}
		path = filepath.Join(home, rel)
	}

	binary, err := cmd.Flags().GetString("binary")
	if err != nil {
		return fmt.Errorf("failed to read --binary flag: %w", err)
	}
	if binary == "" {
		binary = findServerBinary()
	}
	serverConfig := ""
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			if _, err := os.Stat(abs); err == nil {
				serverConfig = abs
			}
		}
	}

	if err := configureMCPClient(path, binary, serverConfig); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ MCP config updated: %s\n", path)
	return nil
}

// findServerBinary prefers an october-mcp installed beside the running binary
func findServerBinary() string {
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), "october-mcp")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if resolved, err := exec.LookPath("october-mcp"); err == nil {
		return resolved
	}
	return "october-mcp"
}

// configureMCPClient adds or replaces the server entry under mcpServers,
// keeping every other key of the file. serverConfig is passed as -config
// when set.
func configureMCPClient(path, binary, serverConfig string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", path, err)
	}

	config := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("could not parse config at %s: %w", path, err)
		}
	}

	mcpServers := map[string]interface{}{}
	if servers, ok := config["mcpServers"].(map[string]interface{}); ok {
		mcpServers = servers
	}

	args := []string{}
	if serverConfig != "" {
		args = append(args, "-config", serverConfig)
	}
	entry := map[string]interface{}{
		"command": binary,
		"args":    args,
		"env": map[string]string{
			"OCTOBER_LOG_LEVEL": "info",
		},
	}
	mcpServers[serverKey] = entry
	config["mcpServers"] = mcpServers

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write MCP config %s: %w", path, err)
	}
	return nil
}
