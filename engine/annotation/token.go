package annotation

import "strings"

// Tag is the literal kind word that opens an annotation token.
type Tag string

const (
	TagSelect   Tag = "SELECT"
	TagRange    Tag = "RANGE"
	TagKVJSON   Tag = "KVJSON"
	TagInput    Tag = "INPUT"
	TagTextarea Tag = "TEXTAREA"
	TagPassword Tag = "PASSWORD"

	// Variable and vault forms are modifiers of INPUT, TEXTAREA and PASSWORD.
	TagVarInput      Tag = "VARINPUT"
	TagVarTextarea   Tag = "VARTEXTAREA"
	TagVaultPassword Tag = "VAULTPASSWORD"
)

// Tags lists every recognized tag literal.
var Tags = []Tag{
	TagSelect,
	TagRange,
	TagKVJSON,
	TagInput,
	TagTextarea,
	TagPassword,
	TagVarInput,
	TagVarTextarea,
	TagVaultPassword,
}

func (t Tag) String() string {
	return string(t)
}

// Valid reports whether t is one of the recognized literals.
func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// Base strips the VAR or VAULT modifier.
func (t Tag) Base() Tag {
	switch t {
	case TagVarInput:
		return TagInput
	case TagVarTextarea:
		return TagTextarea
	case TagVaultPassword:
		return TagPassword
	default:
		return t
	}
}

// Variable reports whether the tag enables variable interpolation.
func (t Tag) Variable() bool {
	return t == TagVarInput || t == TagVarTextarea
}

// Vault reports whether the tag stores its value in the vault.
func (t Tag) Vault() bool {
	return t == TagVaultPassword
}

// Structured reports whether the spec literal is a JSON object.
func (t Tag) Structured() bool {
	base := t.Base()
	return base == TagRange || base == TagKVJSON
}

// Token is one {{TAG:Label:[spec]}} occurrence found in a raw value.
type Token struct {
	Tag         Tag    `json:"tag"`
	Label       string `json:"label"`
	SpecLiteral string `json:"spec"`
	// Start and End are byte offsets of the whole token in the scanned string.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Key derives a field key from the token label.
func (t Token) Key() string {
	return strings.ReplaceAll(strings.TrimSpace(t.Label), " ", "_")
}

// Source rebuilds the token text exactly as it appears in the raw value.
func (t Token) Source() string {
	return "{{" + string(t.Tag) + ":" + t.Label + ":" + t.SpecLiteral + "}}"
}
