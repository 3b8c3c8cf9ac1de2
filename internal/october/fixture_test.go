package october

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/phpast"
	"github.com/doITmagic/october-code-mcp/internal/platform"
)

const testRoot = "/srv/october"

// fixture is an in-memory project with an indexer and resolver over it
type fixture struct {
	fs       *files.MemFS
	project  *Project
	indexer  *Indexer
	resolver *Resolver
}

func newFixture(t *testing.T, v platform.Version, sources map[string]string, exclude ...string) *fixture {
	t.Helper()
	return newFixtureWithOptions(t, v, DefaultOptions(), sources, exclude...)
}

func newFixtureWithOptions(t *testing.T, v platform.Version, opts Options, sources map[string]string, exclude ...string) *fixture {
	t.Helper()
	fsys := files.NewMemFS(exclude...)
	for rel, content := range sources {
		fsys.WriteFile(projectPath(rel), content)
	}
	cache := phpast.NewCache()
	project := NewProject(testRoot, platform.New(v), opts)
	return &fixture{
		fs:       fsys,
		project:  project,
		indexer:  NewIndexer(fsys, cache, project),
		resolver: NewResolver(fsys, cache, project),
	}
}

func (f *fixture) index(t *testing.T) Stats {
	t.Helper()
	stats := f.indexer.IndexProject()
	require.Zero(t, stats.Failed)
	return stats
}

func (f *fixture) entity(t *testing.T, rel string) *Class {
	t.Helper()
	c := f.project.FindEntity(projectPath(rel))
	require.NotNil(t, c, "no entity indexed for %s", rel)
	return c
}

// projectPath turns a slash-separated project-relative path into an absolute one
func projectPath(rel string) string {
	return filepath.Join(testRoot, filepath.FromSlash(rel))
}

const blogPlugin = `<?php namespace Acme\Blog;

use System\Classes\PluginBase;

class Plugin extends PluginBase
{
}
`

const postModel = `<?php namespace Acme\Blog\Models;

use Model;

/**
 * Post model
 *
 * @property string $title
 * @property-read int $id Primary key
 */
class Post extends Model
{
    use \October\Rain\Database\Traits\Validation;

    public $table = 'acme_blog_posts';

    protected $fillable = ['title', 'slug'];

    protected $jsonable = ['meta'];

    public $hasMany = [
        'comments' => [Comment::class, 'key' => 'post_id'],
        'tags' => 'Acme\Blog\Models\Tag',
        'authors' => \Acme\Users\Models\Author::class,
    ];

    public $belongsTo = [
        'category' => 'Category',
    ];
}
`

const commentModel = `<?php namespace Acme\Blog\Models;

use October\Rain\Database\Model as BaseModel;

class Comment extends BaseModel
{
}
`

const categoryModel = `<?php namespace Acme\Blog\Models;

class Category extends \October\Rain\Database\Model
{
}
`

const postsController = `<?php namespace Acme\Blog\Controllers;

use Backend\Classes\Controller;

class Posts extends Controller
{
    public $implement = [
        \Backend\Behaviors\ListController::class,
        '@Acme.Blog.Behaviors.Sortable',
    ];

    public $formConfig = 'config_form.yaml';

    public function __construct()
    {
        parent::__construct();
    }

    public function index()
    {
    }

    public function preview($id)
    {
    }

    public function onDelete()
    {
    }

    public function _helper()
    {
    }

    protected function internal()
    {
    }

    public static function make()
    {
    }
}
`

const sortableBehavior = `<?php namespace Acme\Blog\Behaviors;

use Backend\Classes\ControllerBehavior;

class Sortable extends ControllerBehavior
{
    protected $requiredProperties = ['sortConfig'];
}
`

const postsMigration = `<?php

use October\Rain\Database\Updates\Migration;
use Illuminate\Database\Schema\Blueprint;

return new class extends Migration
{
    public function up()
    {
        Schema::create('acme_blog_posts', function (Blueprint $table) {
            $table->id();
            $table->string('title');
            $table->text('content')->nullable();
            $table->index('title');
            $table->timestamps();
        });

        Schema::table('acme_blog_comments', function ($table) {
            $table->integer('post_id');
        });
    }

    public function down()
    {
        Schema::dropIfExists('acme_blog_posts');
    }
};
`

// blogSources is a V3 project with one module, one plugin and an app directory
func blogSources() map[string]string {
	return map[string]string{
		"composer.json": `{"require": {"october/all": "^3.5"}}`,

		"modules/system/ServiceProvider.php": `<?php namespace System;
class ServiceProvider extends \October\Rain\Support\ModuleServiceProvider {}
`,
		"modules/system/models/Setting.php": `<?php namespace System\Models;
class Setting extends \October\Rain\Database\Model {}
`,

		"plugins/acme/blog/Plugin.php":                          blogPlugin,
		"plugins/acme/blog/models/Post.php":                     postModel,
		"plugins/acme/blog/models/Comment.php":                  commentModel,
		"plugins/acme/blog/models/Category.php":                 categoryModel,
		"plugins/acme/blog/controllers/Posts.php":               postsController,
		"plugins/acme/blog/controllers/posts/config_form.yaml":  "modelClass: Acme\\Blog\\Models\\Post\n",
		"plugins/acme/blog/behaviors/Sortable.php":              sortableBehavior,
		"plugins/acme/blog/updates/2024_01_01_create_posts.php": postsMigration,

		"plugins/acme/users/Plugin.php": `<?php namespace Acme\Users;
class Plugin extends \System\Classes\PluginBase {}
`,
		"plugins/acme/users/models/Author.php": `<?php namespace Acme\Users\Models;
use Model;
class Author extends Model {}
`,

		"app/Provider.php": `<?php namespace App;
class Provider extends \System\Classes\AppBase {}
`,
		"app/models/Preference.php": `<?php namespace App\Models;
class Preference extends \System\Models\SettingModel {}
`,

		"themes/demo/theme.yaml":           "name: Demo\ndescription: Demo theme\nauthor: Acme\n",
		"themes/demo/pages/home.htm":       "title = \"Home\"\n==\n<h1>Home</h1>\n",
		"themes/demo/partials/nav/top.htm": "<nav></nav>\n",
		"themes/demo/layouts/default.htm":  "{% page %}\n",
	}
}
