package lang

// ItemType classifies a parsed declaration.
type ItemType int

const (
	ItemUnknown ItemType = iota
	ItemExpression
	ItemVariable
	ItemFunction
	ItemClass
	ItemImport
	ItemImportFrom
)

var itemTypeNames = map[ItemType]string{
	ItemUnknown:    "Unknown",
	ItemExpression: "Expression",
	ItemVariable:   "Variable",
	ItemFunction:   "Function",
	ItemClass:      "Class",
	ItemImport:     "Import",
	ItemImportFrom: "ImportFrom",
}

// String returns the canonical item type name.
func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// ParseItem is one named declaration extracted from a statement.
type ParseItem struct {
	// Name is the bound identifier; ExpressionItemName in expression mode.
	Name string
	// Code is the fragment the engine later hands to the interpreter: the
	// right-hand side for variables and expressions, the full statement for
	// functions and import forms.
	Code string
	// Type classifies the declaration.
	Type ItemType
	// Dependencies lists the names the code references, in first-reference
	// order, deduplicated.
	Dependencies []string
}

// ParseResult is the outcome of one Parse call. Items are only meaningful
// when Status is StatusSuccess.
type ParseResult struct {
	Mode    ParseMode
	Items   []ParseItem
	Status  Status
	Message string
}

// OK reports whether the parse succeeded.
func (r ParseResult) OK() bool {
	return r.Status == StatusSuccess
}

// InterpretResult is the outcome of one Interpret call. Value is meaningful
// only on success in eval mode; in exec mode produced names have already been
// written into the environment.
type InterpretResult struct {
	Mode    InterpretMode
	Status  Status
	Message string
	Value   Value
}

// OK reports whether the interpretation succeeded.
func (r InterpretResult) OK() bool {
	return r.Status == StatusSuccess
}
