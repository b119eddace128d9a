package structured

// Schema describes the shape Parse validates a response against: a name for
// error messages and the repair prompt, the array-typed top-level fields
// that need numeric-keyed-object normalization, and the prompt text
// reminding a repair call what's expected.
type Schema interface {
	Name() string
	ArrayFields() []string
	PromptDescription() string
}

// MapSchema is a Schema built from plain data, letting a caller describe a
// one-off schema without declaring a named type.
type MapSchema struct {
	SchemaName   string
	Arrays       []string
	Description  string
}

func (s MapSchema) Name() string              { return s.SchemaName }
func (s MapSchema) ArrayFields() []string      { return s.Arrays }
func (s MapSchema) PromptDescription() string  { return s.Description }
