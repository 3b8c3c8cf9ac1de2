package october

import "strings"

// Kind discriminates the class entities the indexer recognizes
type Kind int

const (
	KindController Kind = iota
	KindModel
	KindControllerBehavior
	KindModelBehavior
	KindComponent
	KindWidget
	KindFormWidget
	KindReportWidget
	KindFilterWidget
	KindCommand
	KindMigration
)

var kindNames = []string{
	KindController:         "controller",
	KindModel:              "model",
	KindControllerBehavior: "controller_behavior",
	KindModelBehavior:      "model_behavior",
	KindComponent:          "component",
	KindWidget:             "widget",
	KindFormWidget:         "form_widget",
	KindReportWidget:       "report_widget",
	KindFilterWidget:       "filter_widget",
	KindCommand:            "command",
	KindMigration:          "migration",
}

// AllKinds returns every entity kind in declaration order
func AllKinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind accepts the names produced by Kind.String, plus plurals
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for i, name := range kindNames {
		if s == name || s == name+"s" {
			return Kind(i), true
		}
	}
	return 0, false
}

// allowedParents lists, per kind, the fully-qualified ancestors a class must
// extend directly to be indexed as that kind
var allowedParents = map[Kind][]string{
	KindModel: {
		"Model",
		`October\Rain\Database\Model`,
		`System\Models\SettingModel`,
		`October\Rain\Auth\Models\User`,
		`October\Rain\Auth\Models\Group`,
		`October\Rain\Auth\Models\Role`,
		`October\Rain\Auth\Models\Throttle`,
		`October\Rain\Auth\Models\Preferences`,
	},
	KindController: {
		`Backend\Classes\Controller`,
		`Backend\Classes\WildcardController`,
		`Illuminate\Routing\Controller`,
	},
	KindControllerBehavior: {`Backend\Classes\ControllerBehavior`},
	KindModelBehavior:      {`System\Classes\ModelBehavior`},
	KindComponent:          {`Cms\Classes\ComponentBase`},
	KindWidget:             {`Backend\Classes\WidgetBase`},
	KindFormWidget:         {`Backend\Classes\FormWidgetBase`},
	KindReportWidget:       {`Backend\Classes\ReportWidgetBase`},
	KindFilterWidget:       {`Backend\Classes\FilterWidgetBase`},
	KindCommand:            {`Illuminate\Console\Command`},
	KindMigration: {
		`October\Rain\Database\Updates\Migration`,
		`Illuminate\Database\Migrations\Migration`,
	},
}

// AllowedParent reports whether a class extending parentFQN qualifies as kind k
func AllowedParent(k Kind, parentFQN string) bool {
	parentFQN = strings.TrimLeft(parentFQN, `\`)
	for _, allowed := range allowedParents[k] {
		if strings.EqualFold(allowed, parentFQN) {
			return true
		}
	}
	return false
}

// HasAjaxMethods reports whether entities of kind k expose `on*` AJAX handlers
func (k Kind) HasAjaxMethods() bool {
	switch k {
	case KindController, KindComponent, KindWidget, KindFormWidget, KindReportWidget, KindFilterWidget:
		return true
	}
	return false
}

// HasBehaviors reports whether entities of kind k declare `$implement`
func (k Kind) HasBehaviors() bool {
	return k == KindController || k == KindModel
}

// behaviorKind is the kind of the behaviors entities of kind k may implement
func (k Kind) behaviorKind() (Kind, bool) {
	switch k {
	case KindController:
		return KindControllerBehavior, true
	case KindModel:
		return KindModelBehavior, true
	}
	return 0, false
}

// convention maps an owner subdirectory to the kinds tried for its files
type convention struct {
	dir       string
	kinds     []Kind
	recursive bool
}

var conventions = []convention{
	{dir: "models", kinds: []Kind{KindModel}},
	{dir: "controllers", kinds: []Kind{KindController}},
	{dir: "behaviors", kinds: []Kind{KindControllerBehavior, KindModelBehavior}},
	{dir: "components", kinds: []Kind{KindComponent}},
	{dir: "widgets", kinds: []Kind{KindWidget, KindFormWidget, KindReportWidget, KindFilterWidget}},
	{dir: "formwidgets", kinds: []Kind{KindFormWidget}},
	{dir: "reportwidgets", kinds: []Kind{KindReportWidget}},
	{dir: "filterwidgets", kinds: []Kind{KindFilterWidget}},
	{dir: "console", kinds: []Kind{KindCommand}},
	{dir: "updates", kinds: []Kind{KindMigration}, recursive: true},
	{dir: "database/migrations", kinds: []Kind{KindMigration}, recursive: true},
}
