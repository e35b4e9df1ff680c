package chunking

import "strings"

// Kind tags how a document's splitting profile was resolved.
type Kind string

const (
	// KindKnown means the extension mapped to a language-specific grammar.
	KindKnown Kind = "known"

	// KindGeneric means no grammar matched and generic separators apply.
	KindGeneric Kind = "generic"
)

// Profile names a splitting strategy: an ordered separator hierarchy from
// coarsest (declaration boundaries) to finest. The empty-string separator
// at the end means "cut at the length bound".
type Profile struct {
	Kind       Kind
	Language   string
	Separators []string
}

// genericSeparators split plain text: paragraph, line, word, raw cut.
var genericSeparators = []string{"\n\n", "\n", " ", ""}

// languageSeparators map a language to separators that put chunk
// boundaries on natural code structure. Derived from the separator
// hierarchies popularized by LangChain's language-aware splitters.
var languageSeparators = map[string][]string{
	"python": {
		"\nclass ", "\ndef ", "\n\tdef ",
		"\n\n", "\n", " ", "",
	},
	"js": {
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	"ts": {
		"\nenum ", "\ninterface ", "\nnamespace ", "\ntype ", "\nclass ",
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	"java": {
		"\nclass ", "\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"cpp": {
		"\nclass ", "\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"go": {
		"\nfunc ", "\nvar ", "\nconst ", "\ntype ",
		"\nif ", "\nfor ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"rust": {
		"\nfn ", "\nconst ", "\nlet ",
		"\nif ", "\nwhile ", "\nfor ", "\nloop ", "\nmatch ",
		"\n\n", "\n", " ", "",
	},
	"php": {
		"\nfunction ", "\nclass ",
		"\nif ", "\nforeach ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"ruby": {
		"\ndef ", "\nclass ",
		"\nif ", "\nunless ", "\nwhile ", "\nfor ", "\ndo ", "\nbegin ", "\nrescue ",
		"\n\n", "\n", " ", "",
	},
	"kotlin": {
		"\nclass ", "\nfun ", "\nval ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nwhen ", "\nelse ",
		"\n\n", "\n", " ", "",
	},
	"scala": {
		"\nclass ", "\nobject ", "\ndef ", "\nval ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nmatch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"markdown": {
		"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"\n\n", "\n", " ", "",
	},
	"html": {
		"<body", "<div", "<p", "<br", "<li",
		"<h1", "<h2", "<h3", "<h4", "<h5", "<h6",
		"<span", "<table", "<tr", "<td", "<th", "<ul", "<ol",
		"<header", "<footer", "<nav", "<head", "<style", "<script",
		"\n\n", "\n", " ", "",
	},
}

// extensionLanguage maps a lowercased extension to a language key.
var extensionLanguage = map[string]string{
	".py":    "python",
	".js":    "js",
	".jsx":   "js",
	".ts":    "ts",
	".tsx":   "ts",
	".java":  "java",
	".cpp":   "cpp",
	".go":    "go",
	".rs":    "rust",
	".php":   "php",
	".rb":    "ruby",
	".kt":    "kotlin",
	".scala": "scala",
	".html":  "html",
	".md":    "markdown",
}

// ResolveProfile returns the splitting profile for a file extension.
//
// Extensions with a mapped language return a Known profile carrying that
// language's separators; everything else returns the Generic profile. The
// outcome is explicit so callers and tests can tell which path was taken.
func ResolveProfile(ext string) Profile {
	lang, ok := extensionLanguage[strings.ToLower(ext)]
	if !ok {
		return Profile{Kind: KindGeneric, Separators: genericSeparators}
	}
	return Profile{
		Kind:       KindKnown,
		Language:   lang,
		Separators: languageSeparators[lang],
	}
}
