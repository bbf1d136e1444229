package schema

// Schema is the parsed form of a schema file before type resolution
type Schema struct {
	Meta         Metadata      `json:"meta"`
	Declarations []Declaration `json:"declarations"`
}

// Metadata holds the file-level defaults from the @genpipe header
type Metadata struct {
	Namespace string `json:"namespace"`
	Module    string `json:"module"`
}

// DeclarationKind is the SDL construct a declaration came from
type DeclarationKind int

const (
	DeclObject DeclarationKind = iota
	DeclEnum
	DeclScalar
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclObject:
		return "type"
	case DeclEnum:
		return "enum"
	case DeclScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Declaration is a top-level `type`, `enum` or `scalar`
type Declaration struct {
	Name       string          `json:"name"`
	Kind       DeclarationKind `json:"kind"`
	Doc        string          `json:"doc"`
	Members    []string        `json:"members,omitempty"`
	Directives []Directive     `json:"directives"`
}

// Directive is an attached directive such as @keyedFactory(value: "Foo")
type Directive struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
}

// Directive returns the first directive with the given name
func (d Declaration) Directive(name string) (Directive, bool) {
	for _, dir := range d.Directives {
		if dir.Name == name {
			return dir, true
		}
	}
	return Directive{}, false
}
