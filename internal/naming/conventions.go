package naming

import (
	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

// Kind is a category of declared identifier.
type Kind string

const (
	KindVariable Kind = "variable"
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindConstant Kind = "constant"
)

// Rule returns the rule id naming issues of this kind are reported under.
func (k Kind) Rule() string { return "naming/" + string(k) }

// Severity returns the severity of a violation of this kind.
func (k Kind) Severity() report.Severity {
	if k == KindClass {
		return report.SeverityError
	}
	return report.SeverityWarning
}

// Convention is the expected style for one identifier kind. The identifier
// is the first participating capture group of Extract. Styles lists every
// accepted style; Styles[0] is the one suggested by default.
type Convention struct {
	Kind    Kind
	Extract *regexp2.Regexp
	Styles  []Style
}

// Accepts reports whether name satisfies the convention.
func (c Convention) Accepts(name string) bool {
	for _, s := range c.Styles {
		if s.Matches(name) {
			return true
		}
	}
	return false
}

// Suggest restyles name into the accepted style that keeps the case of
// its first letter, falling back to the primary style.
func (c Convention) Suggest(name string) (string, Style) {
	for _, s := range c.Styles {
		if fixed := Restyle(name, s); sameInitialCase(fixed, name) {
			return fixed, s
		}
	}
	return Restyle(name, c.Styles[0]), c.Styles[0]
}

// Conventions holds the four conventions of a language in check order.
type Conventions struct {
	Language lang.Language
	Variable Convention
	Function Convention
	Class    Convention
	Constant Convention
}

// Kinds returns the conventions in the order they are checked.
func (c Conventions) Kinds() []Convention {
	return []Convention{c.Variable, c.Function, c.Class, c.Constant}
}

// For returns the naming conventions for a language.
func For(l lang.Language) (Conventions, error) {
	switch l {
	case lang.JavaScript:
		return javascriptConventions, nil
	case lang.TypeScript:
		return typescriptConventions, nil
	case lang.Python:
		return pythonConventions, nil
	case lang.Java:
		return javaConventions, nil
	case lang.Go:
		return goConventions, nil
	default:
		return Conventions{}, l.Validate()
	}
}

func extractor(expr string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, opts)
	re.MatchTimeout = matchTimeout
	return re
}

var (
	javascriptConventions = Conventions{
		Language: lang.JavaScript,
		Variable: Convention{KindVariable, extractor(`\b(?:let|var)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None), []Style{CamelCase}},
		Function: Convention{KindFunction, extractor(`\bfunction\s+([a-zA-Z_$][a-zA-Z0-9_$]*)|\b(?:const|let|var)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)\s*=\s*(?:async\s*)?\(|([a-zA-Z_$][a-zA-Z0-9_$]*)\s*\([^)]*\)\s*\{`, regexp2.None), []Style{CamelCase}},
		Class:    Convention{KindClass, extractor(`\bclass\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None), []Style{PascalCase}},
		Constant: Convention{KindConstant, extractor(`\bconst\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None), []Style{ScreamingSnakeCase}},
	}

	typescriptConventions = Conventions{
		Language: lang.TypeScript,
		Variable: javascriptConventions.Variable,
		Function: Convention{KindFunction, extractor(`\bfunction\s+([a-zA-Z_$][a-zA-Z0-9_$]*)|\b(?:const|let|var)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)\s*(?::\s*[^=]+)?\s*=\s*(?:async\s*)?\(`, regexp2.None), []Style{CamelCase}},
		Class:    Convention{KindClass, extractor(`\b(?:class|interface|type)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None), []Style{PascalCase}},
		Constant: javascriptConventions.Constant,
	}

	pythonConventions = Conventions{
		Language: lang.Python,
		Variable: Convention{KindVariable, extractor(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*=(?!=)`, regexp2.Multiline), []Style{SnakeCase}},
		Function: Convention{KindFunction, extractor(`\bdef\s+([a-zA-Z_][a-zA-Z0-9_]*)`, regexp2.None), []Style{SnakeCase}},
		Class:    Convention{KindClass, extractor(`\bclass\s+([a-zA-Z_][a-zA-Z0-9_]*)`, regexp2.None), []Style{PascalCase}},
		Constant: Convention{KindConstant, extractor(`^([A-Z][A-Z0-9_]*)\s*=(?!=)`, regexp2.Multiline), []Style{ScreamingSnakeCase}},
	}

	javaConventions = Conventions{
		Language: lang.Java,
		Variable: Convention{KindVariable, extractor(`\b(?:int|String|boolean|char|double|float|long|short|byte|var)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None), []Style{CamelCase}},
		Function: Convention{KindFunction, extractor(`(?:public|private|protected|static|\s)+[\w<>\[\]]+\s+([a-zA-Z_$][a-zA-Z0-9_$]*)\s*\(`, regexp2.None), []Style{CamelCase}},
		Class:    Convention{KindClass, extractor(`\b(?:class|interface|enum)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None), []Style{PascalCase}},
		Constant: Convention{KindConstant, extractor(`(?:\bstatic\s+)?\bfinal\s+[\w<>\[\]]+\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`, regexp2.None), []Style{ScreamingSnakeCase}},
	}

	// Go exports by capitalization, so every kind accepts both mixed-caps
	// forms and suggestions keep the identifier's visibility.
	goConventions = Conventions{
		Language: lang.Go,
		Variable: Convention{KindVariable, extractor(`\bvar\s+([a-zA-Z_][a-zA-Z0-9_]*)|([a-zA-Z_][a-zA-Z0-9_]*)\s*:=`, regexp2.None), []Style{CamelCase, PascalCase}},
		Function: Convention{KindFunction, extractor(`\bfunc\s+(?:\([^)]*\)\s*)?([a-zA-Z_][a-zA-Z0-9_]*)`, regexp2.None), []Style{CamelCase, PascalCase}},
		Class:    Convention{KindClass, extractor(`\btype\s+([a-zA-Z_][a-zA-Z0-9_]*)\s+(?:struct|interface)\b`, regexp2.None), []Style{PascalCase, CamelCase}},
		Constant: Convention{KindConstant, extractor(`\bconst\s+([a-zA-Z_][a-zA-Z0-9_]*)`, regexp2.None), []Style{PascalCase, CamelCase}},
	}
)

func sameInitialCase(a, b string) bool {
	ra, rb := firstLetter(a), firstLetter(b)
	return isUpper(ra) == isUpper(rb)
}
