package october

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/october-code-mcp/internal/platform"
)

func methodNames(methods []Method) []string {
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.Name)
	}
	return names
}

func TestModelTable(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)

	assert.Equal(t, "acme_blog_posts", f.resolver.Table(f.entity(t, "plugins/acme/blog/models/Post.php")))
	assert.Equal(t, "comments", f.resolver.Table(f.entity(t, "plugins/acme/blog/models/Comment.php")))
	assert.Equal(t, "categories", f.resolver.Table(f.entity(t, "plugins/acme/blog/models/Category.php")))
	assert.Empty(t, f.resolver.Table(f.entity(t, "plugins/acme/blog/controllers/Posts.php")))
}

func TestModelRelations_SameOwnerOnly(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	post := f.entity(t, "plugins/acme/blog/models/Post.php")

	relations := f.resolver.RelationMap(post)
	require.Contains(t, relations, "comments")
	assert.Equal(t, `Acme\Blog\Models\Comment`, relations["comments"].FQN)
	require.Contains(t, relations, "category")
	assert.Equal(t, `Acme\Blog\Models\Category`, relations["category"].FQN)

	// Tag is not indexed anywhere; Author lives in another plugin
	assert.NotContains(t, relations, "tags")
	assert.NotContains(t, relations, "authors")
	require.NotNil(t, f.project.FindEntityByFqn(`Acme\Users\Models\Author`))

	for _, rel := range f.resolver.Relations(post) {
		switch rel.Name {
		case "comments":
			assert.Equal(t, "hasMany", rel.Type)
		case "category":
			assert.Equal(t, "belongsTo", rel.Type)
		}
		assert.Positive(t, rel.Range.StartLine)
	}
}

func TestModelRelations_CrossOwnerTargetIsNotResolved(t *testing.T) {
	f := newFixture(t, platform.V3_5, map[string]string{
		"plugins/acme/blog/Plugin.php": blogPlugin,
		"plugins/acme/blog/models/Author.php": `<?php namespace Acme\Blog\Models;
use Acme\Forum\Models\Post;
class Author extends \Model {
    public $hasMany = ['posts' => Post::class];
}
`,
		"plugins/acme/forum/Plugin.php": "<?php namespace Acme\\Forum;\nclass Plugin {}\n",
		"plugins/acme/forum/models/Post.php": `<?php namespace Acme\Forum\Models;
class Post extends \Model {}
`,
	})
	f.index(t)

	author := f.entity(t, "plugins/acme/blog/models/Author.php")
	require.NotNil(t, f.project.FindEntityByFqn(`Acme\Forum\Models\Post`))
	assert.NotContains(t, f.resolver.RelationMap(author), "posts")
	assert.Empty(t, f.resolver.Relations(author))
}

func TestModelAttributes(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	post := f.entity(t, "plugins/acme/blog/models/Post.php")

	declared := f.resolver.DeclaredAttributes(post)
	assert.Equal(t, []Attribute{
		{Name: "title", Type: "string", Source: "docblock"},
		{Name: "id", Type: "int", Source: "docblock"},
		{Name: "slug", Source: "fillable"},
		{Name: "meta", Source: "jsonable"},
	}, declared)

	guessed := f.resolver.GuessedAttributes(post)
	names := make([]string, 0, len(guessed))
	for _, a := range guessed {
		names = append(names, a.Name)
		assert.Equal(t, "migration", a.Source)
	}
	assert.Equal(t, []string{"content", "created_at", "id", "title", "updated_at"}, names)

	assert.Equal(t, []string{`October\Rain\Database\Traits\Validation`}, f.resolver.Traits(post))
}

func TestMigrationTablesAndColumns(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	migration := f.entity(t, "plugins/acme/blog/updates/2024_01_01_create_posts.php")

	tables := f.resolver.MigrationTables(migration)
	require.Len(t, tables, 3)
	assert.Equal(t, "create", tables[0].Op)
	assert.Equal(t, "acme_blog_posts", tables[0].Table)
	assert.Equal(t, "table", tables[1].Op)
	assert.Equal(t, "acme_blog_comments", tables[1].Table)
	// dropIfExists names a table too
	assert.Equal(t, "dropIfExists", tables[2].Op)

	byTable := f.resolver.ColumnsByTable(migration)
	assert.Equal(t, []string{"id", "title", "content", "created_at", "updated_at"}, byTable["acme_blog_posts"])
	assert.Equal(t, []string{"post_id"}, byTable["acme_blog_comments"])

	assert.Equal(t, []string{"content", "created_at", "id", "post_id", "title", "updated_at"}, f.resolver.MigrationColumns(migration))
}

func TestMigrationColumns_IdIsVersionGated(t *testing.T) {
	sources := map[string]string{
		"plugins/acme/blog/Plugin.php": blogPlugin,
		"plugins/acme/blog/updates/CreateTags.php": `<?php namespace Acme\Blog\Updates;
use Schema;
use October\Rain\Database\Updates\Migration;
class CreateTags extends Migration {
    public function up() {
        Schema::create("acme_blog_tags", function ($table) {
            $table->id();
            $table->increments('legacy_id');
            $table->string("name", 64);
        });
    }
}
`,
	}

	old := newFixture(t, platform.V1_0, sources)
	old.index(t)
	assert.Equal(t, []string{"legacy_id", "name"}, old.resolver.MigrationColumns(old.entity(t, "plugins/acme/blog/updates/CreateTags.php")))

	current := newFixture(t, platform.V2_0, sources)
	current.index(t)
	assert.Equal(t, []string{"id", "legacy_id", "name"}, current.resolver.MigrationColumns(current.entity(t, "plugins/acme/blog/updates/CreateTags.php")))
}

func TestControllerBehaviorsAndRequiredProperties(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	posts := f.entity(t, "plugins/acme/blog/controllers/Posts.php")

	implemented := f.resolver.ImplementedBehaviors(posts)
	require.Len(t, implemented, 2)
	assert.Equal(t, `Backend\Behaviors\ListController`, implemented[0].FQN)
	assert.Equal(t, `Acme\Blog\Behaviors\Sortable`, implemented[1].FQN)
	assert.Less(t, implemented[0].Range.StartPos, implemented[1].Range.StartPos)

	// only behaviors indexed in the project attach
	attached := f.resolver.Behaviors(posts)
	require.Len(t, attached, 1)
	assert.Equal(t, `Acme\Blog\Behaviors\Sortable`, attached[0].FQN)
	assert.Same(t, f.entity(t, "plugins/acme/blog/behaviors/Sortable.php"), attached[0].Behavior)

	assert.Equal(t, []RequiredProperty{
		{Behavior: `Backend\Behaviors\ListController`, Property: "listConfig"},
		{Behavior: `Acme\Blog\Behaviors\Sortable`, Property: "sortConfig"},
	}, f.resolver.RequiredProperties(posts))
	assert.Equal(t, []string{"listConfig", "sortConfig"}, f.resolver.MissingProperties(posts))
}

func TestControllerWithListControllerOnly(t *testing.T) {
	f := newFixture(t, platform.V3_5, map[string]string{
		"plugins/acme/blog/Plugin.php": blogPlugin,
		"plugins/acme/blog/controllers/Tags.php": `<?php namespace Acme\Blog\Controllers;
class Tags extends \Backend\Classes\Controller
{
    public $implement = [\Backend\Behaviors\ListController::class];
}
`,
	})
	f.index(t)
	tags := f.entity(t, "plugins/acme/blog/controllers/Tags.php")

	implemented := f.resolver.ImplementedBehaviors(tags)
	require.Len(t, implemented, 1)
	assert.Equal(t, `Backend\Behaviors\ListController`, implemented[0].FQN)
	assert.Equal(t, []string{"listConfig"}, f.resolver.MissingProperties(tags))
}

func TestControllerPageActionsAndAjax(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	posts := f.entity(t, "plugins/acme/blog/controllers/Posts.php")

	assert.Equal(t, []string{"index", "preview"}, methodNames(f.resolver.PageActions(posts)))
	assert.Equal(t, []string{"onDelete"}, methodNames(f.resolver.AjaxMethods(posts)))

	model := f.entity(t, "plugins/acme/blog/models/Post.php")
	assert.Nil(t, f.resolver.AjaxMethods(model))
	assert.Nil(t, f.resolver.PageActions(model))
}

func TestControllerConfigFiles(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	posts := f.entity(t, "plugins/acme/blog/controllers/Posts.php")

	configs := f.resolver.ConfigFiles(posts)
	require.Len(t, configs, 1)
	assert.Equal(t, "formConfig", configs[0].Property)
	assert.Equal(t, projectPath("plugins/acme/blog/controllers/posts/config_form.yaml"), configs[0].Path)
	assert.True(t, configs[0].Exists)

	models := f.resolver.ConfigModels(posts)
	require.Len(t, models, 1)
	assert.Equal(t, `Acme\Blog\Models\Post`, models[0].FQN)
}

func TestControllerConfigFiles_Structured(t *testing.T) {
	opts := DefaultOptions()
	opts.StructuredControllers = true
	f := newFixtureWithOptions(t, platform.V3_5, opts, map[string]string{
		"plugins/acme/blog/Plugin.php": blogPlugin,
		"plugins/acme/blog/controllers/Posts.php": `<?php namespace Acme\Blog\Controllers;
class Posts extends \Backend\Classes\Controller
{
    public $listConfig = 'config_list.yaml';
    public $relationConfig = '$/acme/blog/models/post/relations.yaml';
    public $reorderConfig = '~/config/reorder.yaml';
}
`,
		"plugins/acme/blog/controllers/posts/config/config_list.yaml": "modelClass: \\Acme\\Users\\Models\\Author\n",
		"plugins/acme/users/Plugin.php": "<?php namespace Acme\\Users;\nclass Plugin {}\n",
		"plugins/acme/users/models/Author.php": `<?php namespace Acme\Users\Models;
class Author extends \Model {}
`,
	})
	f.index(t)
	posts := f.entity(t, "plugins/acme/blog/controllers/Posts.php")

	configs := f.resolver.ConfigFiles(posts)
	require.Len(t, configs, 3)
	paths := map[string]ConfigFile{}
	for _, c := range configs {
		paths[c.Property] = c
	}
	assert.Equal(t, projectPath("plugins/acme/blog/controllers/posts/config/config_list.yaml"), paths["listConfig"].Path)
	assert.True(t, paths["listConfig"].Exists)
	assert.Equal(t, projectPath("plugins/acme/blog/models/post/relations.yaml"), paths["relationConfig"].Path)
	assert.False(t, paths["relationConfig"].Exists)
	assert.Equal(t, projectPath("config/reorder.yaml"), paths["reorderConfig"].Path)

	// modelClass is looked up across the whole project
	models := f.resolver.ConfigModels(posts)
	require.Len(t, models, 1)
	assert.Equal(t, `Acme\Users\Models\Author`, models[0].FQN)
}

func TestCommandName(t *testing.T) {
	sources := map[string]string{
		"plugins/acme/blog/Plugin.php": blogPlugin,
		"plugins/acme/blog/console/Sync.php": `<?php namespace Acme\Blog\Console;
use Illuminate\Console\Command;
class Sync extends Command
{
    protected $name = 'blog:legacy-sync';
    protected $signature = 'blog:sync {--force : Overwrite}';
}
`,
		"plugins/acme/blog/console/Prune.php": `<?php namespace Acme\Blog\Console;
class Prune extends \Illuminate\Console\Command
{
    protected $name = 'blog:prune';
}
`,
	}

	current := newFixture(t, platform.V3_5, sources)
	current.index(t)
	assert.Equal(t, "blog:sync", current.resolver.CommandName(current.entity(t, "plugins/acme/blog/console/Sync.php")))
	assert.Equal(t, "blog:prune", current.resolver.CommandName(current.entity(t, "plugins/acme/blog/console/Prune.php")))

	legacy := newFixture(t, platform.V2_2, sources)
	legacy.index(t)
	assert.Equal(t, "blog:legacy-sync", legacy.resolver.CommandName(legacy.entity(t, "plugins/acme/blog/console/Sync.php")))
}

func TestComponentDetails(t *testing.T) {
	f := newFixture(t, platform.V3_5, map[string]string{
		"plugins/acme/blog/Plugin.php": blogPlugin,
		"plugins/acme/blog/components/Feed.php": `<?php namespace Acme\Blog\Components;
use Cms\Classes\ComponentBase;
class Feed extends ComponentBase
{
    public function componentDetails()
    {
        return [
            'name' => 'Post feed',
            'description' => 'Lists recent posts',
        ];
    }

    public function defineProperties()
    {
        return [
            'perPage' => ['title' => 'Per page', 'default' => 10],
            'category' => ['title' => 'Category'],
        ];
    }

    public function onLoadMore()
    {
    }

    protected function onHidden()
    {
    }
}
`,
	})
	f.index(t)
	feed := f.entity(t, "plugins/acme/blog/components/Feed.php")

	assert.Equal(t, ComponentDetails{Name: "Post feed", Description: "Lists recent posts"}, f.resolver.ComponentDetails(feed))
	assert.Equal(t, []string{"category", "perPage"}, f.resolver.ComponentProperties(feed))
	assert.Equal(t, []string{"onLoadMore"}, methodNames(f.resolver.AjaxMethods(feed)))
}

func TestResolver_ReadsLiveContent(t *testing.T) {
	f := newFixture(t, platform.V3_5, blogSources())
	f.index(t)
	post := f.entity(t, "plugins/acme/blog/models/Post.php")
	require.Equal(t, "acme_blog_posts", f.resolver.Table(post))

	f.fs.WriteFile(post.Path, `<?php namespace Acme\Blog\Models;
class Post extends \Model { public $table = 'blog_articles'; }
`)
	assert.Equal(t, "blog_articles", f.resolver.Table(post))

	// a file that no longer parses to a class yields no facts
	f.fs.WriteFile(post.Path, "<?php\n")
	assert.Empty(t, f.resolver.Relations(post))
	assert.Empty(t, f.resolver.DeclaredAttributes(post))
	assert.Equal(t, "posts", f.resolver.Table(post))
}
