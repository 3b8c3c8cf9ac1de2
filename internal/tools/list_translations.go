package tools

import (
	"context"
	"sort"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// ListTranslationsTool lists the translation keys of a project for one locale
type ListTranslationsTool struct {
	workspaceManager *workspace.Manager
}

// NewListTranslationsTool creates a new list translations tool
func NewListTranslationsTool(wm *workspace.Manager) *ListTranslationsTool {
	return &ListTranslationsTool{workspaceManager: wm}
}

func (t *ListTranslationsTool) Name() string {
	return "list_translations"
}

func (t *ListTranslationsTool) Description() string {
	return "List translation keys usable with trans() and the |_ Twig filter: module and plugin strings as code::file.key, JSON strings by their text, with the value and defining file. Defaults to the project locale from config/app.php. Filter with prefix."
}

func (t *ListTranslationsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("Any path inside the project"),
			"locale": map[string]interface{}{
				"type":        "string",
				"description": "Optional: locale such as 'en' or 'de' (default: the project locale)",
			},
			"prefix": map[string]interface{}{
				"type":        "string",
				"description": "Optional: only keys starting with this prefix",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

func (t *ListTranslationsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}
	locale := stringArg(args, "locale")
	prefix := stringArg(args, "prefix")

	var entries []keyValue
	err = t.workspaceManager.Query(root, func(_ *october.Project, r *october.Resolver) error {
		if locale == "" {
			locale = r.Locale()
		}
		for key, tr := range r.Translations(locale) {
			if strings.HasPrefix(key, prefix) {
				entries = append(entries, keyValue{Key: key, Value: tr.Value, Path: tr.Path})
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	if wantsJSON(args) {
		return toJSON(entries)
	}
	return formatKeyValues(root, "translations for locale "+locale, entries), nil
}
