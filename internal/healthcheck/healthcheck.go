package healthcheck

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/config"
	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/platform"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Service string
	Status  string
	Message string
	Error   error
}

func ok(service, format string, args ...interface{}) CheckResult {
	return CheckResult{Service: service, Status: "ok", Message: fmt.Sprintf(format, args...)}
}

func failed(service string, err error, format string, args ...interface{}) CheckResult {
	return CheckResult{Service: service, Status: "error", Error: err, Message: fmt.Sprintf(format, args...)}
}

// CheckPHP verifies the configured PHP executable can be found
func CheckPHP(phpPath string) CheckResult {
	if phpPath == "" {
		phpPath = "php"
	}
	resolved, err := exec.LookPath(phpPath)
	if err != nil {
		return failed("PHP", err, "PHP executable %q not found", phpPath)
	}
	return ok("PHP", "Found %s", resolved)
}

// CheckProjectRoot verifies an October CMS project root lies at or above path
func CheckProjectRoot(fsys files.FileSystem, path, pluginsDir string) (CheckResult, string) {
	info, err := workspace.NewDetector(fsys, pluginsDir).DetectFromPath(path)
	if err != nil {
		return failed("Project", err, "No October CMS project found at or above %s", path), ""
	}
	return ok("Project", "Root %s (markers: %s)", info.Root, strings.Join(info.Markers, ", ")), info.Root
}

// CheckPlatform verifies the platform version of root can be detected
func CheckPlatform(fsys files.FileSystem, root string) CheckResult {
	v, err := platform.Detect(fsys, root)
	if err != nil {
		return failed("Platform", err, "%v", err)
	}
	return ok("Platform", "October CMS %s", v)
}

// CheckPluginsDir verifies the plugins directory exists under root
func CheckPluginsDir(fsys files.FileSystem, root, pluginsDir string) CheckResult {
	dir := filepath.Join(root, pluginsDir)
	if !fsys.IsDir(dir) {
		return failed("Plugins", nil, "Plugins directory %s does not exist", dir)
	}
	vendors, err := fsys.ListDirectories(dir, false)
	if err != nil {
		return failed("Plugins", err, "Cannot list %s: %v", dir, err)
	}
	return ok("Plugins", "%s (%d vendors)", dir, len(vendors))
}

// CheckAll runs all health checks for the project containing path.
// Project-level checks are skipped when no root is found.
func CheckAll(cfg *config.Config, fsys files.FileSystem, path string) []CheckResult {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	results := []CheckResult{CheckPHP(cfg.Project.PHPPath)}

	rootResult, root := CheckProjectRoot(fsys, path, cfg.Project.PluginsDir)
	results = append(results, rootResult)
	if root == "" {
		return results
	}
	return append(results,
		CheckPlatform(fsys, root),
		CheckPluginsDir(fsys, root, cfg.Project.PluginsDir),
	)
}

// Healthy reports whether every check passed
func Healthy(results []CheckResult) bool {
	for _, result := range results {
		if result.Status != "ok" {
			return false
		}
	}
	return true
}

// FormatResults formats health check results for display
func FormatResults(results []CheckResult) string {
	var b strings.Builder
	b.WriteString("\n=== Project Health Check ===\n\n")

	for _, result := range results {
		var status string
		switch result.Status {
		case "ok":
			status = "✓"
		case "error":
			status = "✗"
		default:
			status = "?"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", status, result.Service, result.Message)
	}

	return b.String()
}

// GetRemediation provides remediation steps for failed checks
func GetRemediation(results []CheckResult) string {
	var b strings.Builder

	for _, result := range results {
		if result.Status == "ok" {
			continue
		}
		fmt.Fprintf(&b, "\n%s check failed:\n", result.Service)

		switch result.Service {
		case "PHP":
			b.WriteString(`
  Install PHP 8 or set the executable in the config file:
    project:
      php_path: /usr/bin/php8.2
  Indexing works without PHP; only shell-based features need it.
`)
		case "Project":
			b.WriteString(`
  Pass a path inside an October CMS installation. A project root holds
  an artisan file, or a composer.json next to a modules or plugins directory.
`)
		case "Platform":
			b.WriteString(`
  Run composer install so composer.lock pins october/rain, or require
  october/all (or october/rain) in composer.json.
`)
		case "Plugins":
			b.WriteString(`
  Create the plugins directory, or set project.plugins_dir (OCTOBER_PLUGINS_DIR)
  if the installation uses a different name.
`)
		}
	}

	return b.String()
}
