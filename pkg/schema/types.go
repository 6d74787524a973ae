package schema

// Version is the schema document format version.
const Version = "2.0.0"

// PathSeparator joins router names into a procedure path.
const PathSeparator = "/"

// Kind distinguishes the two registrable complex types.
type Kind string

const (
	KindEnum   Kind = "enum"
	KindStruct Kind = "struct"
)

// ProcedureType is the kind of a procedure.
type ProcedureType string

const (
	Query    ProcedureType = "query"
	Mutation ProcedureType = "mutation"
)

// Field is one struct field or enum member. Value is only set for enum members.
type Field struct {
	Name  string  `json:"name"`
	Rel   *Rel    `json:"rel"`
	Value *string `json:"value,omitempty"`
}

// Type is a registered struct or enum.
type Type struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"type"`
	Fields []Field `json:"fields"`
}

// Procedure describes one callable procedure.
type Procedure struct {
	ID     int           `json:"id"`
	Type   ProcedureType `json:"type"`
	Path   string        `json:"path"`
	Name   string        `json:"name"`
	Params *Rel          `json:"params,omitempty"`
	Result *Rel          `json:"result,omitempty"`
}

// Info is the application metadata embedded in a document.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Document is the full schema handed to client generators.
type Document struct {
	RPCAPI     string           `json:"rpcapi"`
	Info       Info             `json:"info"`
	Procedures []Procedure      `json:"procedures"`
	Types      map[string]*Type `json:"types"`
}
