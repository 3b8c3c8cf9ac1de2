package october

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
	"github.com/doITmagic/october-code-mcp/internal/platform"
)

func TestFlattenConfig_NestedArrays(t *testing.T) {
	file := phpast.Parse([]byte(`<?php
return ['database' => ['connections' => ['mysql' => ['database' => 'x']]]];
`))
	flat := FlattenConfig(file)

	require.Len(t, flat, 1)
	require.Contains(t, flat, "database.connections.mysql.database")
	assert.Equal(t, "x", flat["database.connections.mysql.database"].Value)
}

func TestFlattenConfig_Leaves(t *testing.T) {
	file := phpast.Parse([]byte(`<?php
return [
    'name' => __('acme.blog::lang.plugin.name'),
    'label' => trans('acme.blog::lang.label'),
    'debug' => env('APP_DEBUG', false),
    'per_page' => 10,
    'drivers' => ['file', 'redis'],
    'empty' => [],
    'nested' => [
        'enabled' => true,
    ],
];
`))
	flat := FlattenConfig(file)

	assert.Equal(t, "acme.blog::lang.plugin.name", flat["name"].Value)
	assert.Equal(t, "acme.blog::lang.label", flat["label"].Value)
	assert.Equal(t, "env('APP_DEBUG', false)", flat["debug"].Value)
	assert.Equal(t, "10", flat["per_page"].Value)
	assert.Equal(t, "['file', 'redis']", flat["drivers"].Value)
	assert.Contains(t, flat, "empty")
	assert.Equal(t, "true", flat["nested.enabled"].Value)
	assert.NotContains(t, flat, "nested")

	assert.Empty(t, FlattenConfig(phpast.Parse([]byte("<?php\n$x = 1;\n"))))
	assert.Empty(t, FlattenConfig(nil))
}

func TestConfigMap_KeysAndPrecedence(t *testing.T) {
	sources := blogSources()
	sources["config/app.php"] = `<?php
return [
    'locale' => 'de',
    'name' => 'October',
];
`
	sources["config/cms.php"] = `<?php
return ['backendUri' => 'admin'];
`
	sources["modules/system/config/config.php"] = `<?php
return ['per_page' => 20];
`
	sources["plugins/acme/blog/config/config.php"] = `<?php
return ['per_page' => 10, 'feed' => ['enabled' => true]];
`
	sources["plugins/acme/blog/config/mail.php"] = `<?php
return ['from' => 'blog@example.com'];
`
	f := newFixture(t, platform.V3_5, sources)
	f.index(t)

	cfg := f.resolver.ConfigMap()
	assert.Equal(t, "de", cfg["app.locale"].Value)
	assert.Equal(t, "admin", cfg["cms.backendUri"].Value)
	assert.Equal(t, "20", cfg["system::per_page"].Value)
	assert.Equal(t, "10", cfg["acme.blog::per_page"].Value)
	assert.Equal(t, "true", cfg["acme.blog::feed.enabled"].Value)
	assert.Equal(t, "blog@example.com", cfg["acme.blog::mail.from"].Value)
	assert.Equal(t, projectPath("plugins/acme/blog/config/mail.php"), cfg["acme.blog::mail.from"].Path)

	assert.Equal(t, "de", f.resolver.Locale())
}

func TestLocale(t *testing.T) {
	f := newFixture(t, platform.V3_5, map[string]string{
		"config/app.php": "<?php\nreturn ['locale' => env('APP_LOCALE', 'fr')];\n",
	})
	assert.Equal(t, "fr", f.resolver.Locale())

	f = newFixture(t, platform.V3_5, map[string]string{
		"config/app.php": "<?php\nreturn ['debug' => true];\n",
	})
	assert.Equal(t, "en", f.resolver.Locale())

	f = newFixture(t, platform.V3_5, nil)
	assert.Equal(t, "en", f.resolver.Locale())
}

func TestTranslations_MergeOrder(t *testing.T) {
	sources := blogSources()
	sources["modules/system/lang/en.json"] = `{"greeting": "Hello from system", "system.only": "S"}`
	sources["plugins/acme/blog/lang/en.json"] = `{"greeting": "Hello from blog"}`
	sources["plugins/acme/blog/lang/en/lang.php"] = `<?php
return [
    'plugin' => [
        'name' => 'Blog',
        'description' => 'A simple blog',
    ],
    'posts' => 'Posts',
];
`
	sources["plugins/acme/blog/lang/de/lang.php"] = "<?php\nreturn ['posts' => 'Beiträge'];\n"
	sources["lang/en/validation.php"] = "<?php\nreturn ['required' => 'The :attribute field is required.'];\n"
	sources["lang/en.json"] = `{"system.only": "Overridden at root"}`

	f := newFixture(t, platform.V3_5, sources)
	f.index(t)

	translations := f.resolver.Translations("en")
	assert.Equal(t, "Hello from blog", translations["greeting"].Value)
	assert.Equal(t, "Overridden at root", translations["system.only"].Value)
	assert.Equal(t, "Blog", translations["acme.blog::lang.plugin.name"].Value)
	assert.Equal(t, "A simple blog", translations["acme.blog::lang.plugin.description"].Value)
	assert.Equal(t, "Posts", translations["acme.blog::lang.posts"].Value)
	assert.Equal(t, "The :attribute field is required.", translations["validation.required"].Value)
	assert.Equal(t, projectPath("plugins/acme/blog/lang/en.json"), translations["greeting"].Path)

	de := f.resolver.Translations("de")
	assert.Equal(t, "Beiträge", de["acme.blog::lang.posts"].Value)
	assert.NotContains(t, de, "greeting")
}

func TestTranslations_LegacyRootDirectoryAndDefaultLocale(t *testing.T) {
	f := newFixture(t, platform.V2_2, map[string]string{
		"resources/lang/en/site.php":     "<?php\nreturn ['title' => 'Site'];\n",
		"lang/en/ignored.php":            "<?php\nreturn ['title' => 'Ignored'];\n",
		"plugins/acme/blog/Plugin.php":   blogPlugin,
		"plugins/acme/blog/lang/en.json": `{"broken": `,
	})
	f.index(t)

	translations := f.resolver.Translations("")
	assert.Equal(t, "Site", translations["site.title"].Value)
	assert.NotContains(t, translations, "ignored.title")
	assert.NotContains(t, translations, "broken")
}
