package detection

import (
	"regexp"
	"sync"

	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// middlewareImportExprs builds the expressions that recognise an existing
// import of pkg in the given language.
func middlewareImportExprs(pkg string, lang patterns.Language) []*regexp.Regexp {
	q := regexp.QuoteMeta(pkg)
	switch {
	case lang == patterns.LanguagePython:
		return []*regexp.Regexp{
			regexp.MustCompile(`(?m)^[ \t]*import[ \t]+` + q + `(?:[ \t]*(?:#.*|as[ \t]+\w+[ \t]*(?:#.*)?)?)?[ \t]*\r?$`),
			regexp.MustCompile(`(?m)^[ \t]*from[ \t]+` + q + `(?:\.[\w.]+)?[ \t]+import[ \t]`),
		}
	case lang.IsJS():
		return []*regexp.Regexp{
			regexp.MustCompile(`from\s+['"]` + q + `['"]`),
			regexp.MustCompile(`import\s+['"]` + q + `['"]`),
			regexp.MustCompile(`import\s*\{[^}]*\}\s*from\s*['"]` + q + `['"]`),
			regexp.MustCompile(`require\s*\(\s*['"]` + q + `['"]\s*\)`),
		}
	default:
		return nil
	}
}

var compiledMiddlewareExprs sync.Map // pkg+lang -> []*regexp.Regexp

func middlewareExprs(pkg string, lang patterns.Language) []*regexp.Regexp {
	key := string(lang) + "|" + pkg
	if cached, ok := compiledMiddlewareExprs.Load(key); ok {
		return cached.([]*regexp.Regexp)
	}
	exprs := middlewareImportExprs(pkg, lang)
	compiledMiddlewareExprs.Store(key, exprs)
	return exprs
}

// HasMiddleware reports whether text already imports the provider's
// middleware package for lang. Providers without a package for the language
// never count as integrated.
func HasMiddleware(text string, provider patterns.Provider, lang patterns.Language) bool {
	pkg, ok := patterns.MiddlewarePackage(provider, lang)
	if !ok {
		return false
	}
	for _, expr := range middlewareExprs(pkg, lang) {
		if expr.MatchString(text) {
			return true
		}
	}
	return false
}
