package parser

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language describes how one grammar spells the constructs the detectors care
// about. Text-only languages have no grammar and only carry comment syntax.
type Language struct {
	Name            string
	Extensions      []string
	LineComments    []string
	BlockComment    [2]string
	HasGrammar      bool
	DocstringBodies bool

	FunctionKinds    map[string]bool
	IdentifierKinds  map[string]bool
	NumberKinds      map[string]bool
	StringKinds      map[string]bool
	BoolKinds        map[string]bool
	CommentKinds     map[string]bool
	ContainerKinds   map[string]bool
	ImportKinds      map[string]bool
	CallKinds        map[string]bool
	DefinitionFields map[string]string
}

func set(kinds ...string) map[string]bool {
	out := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		out[k] = true
	}
	return out
}

var cStyle = [2]string{"/*", "*/"}

var languages = []*Language{
	{
		Name:            "python",
		Extensions:      []string{".py"},
		LineComments:    []string{"#"},
		HasGrammar:      true,
		DocstringBodies: true,
		FunctionKinds:   set("function_definition"),
		IdentifierKinds: set("identifier"),
		NumberKinds:     set("integer", "float"),
		StringKinds:     set("string", "concatenated_string"),
		BoolKinds:       set("true", "false"),
		CommentKinds:    set("comment"),
		ContainerKinds:  set("block", "module"),
		ImportKinds:     set("import_statement", "import_from_statement"),
		CallKinds:       set("call"),
		DefinitionFields: map[string]string{
			"function_definition":  "name",
			"class_definition":     "name",
			"assignment":           "left",
			"augmented_assignment": "left",
			"for_statement":        "left",
			"parameters":           "",
			"lambda_parameters":    "",
		},
	},
	{
		Name:            "go",
		Extensions:      []string{".go"},
		LineComments:    []string{"//"},
		BlockComment:    cStyle,
		HasGrammar:      true,
		FunctionKinds:   set("function_declaration", "method_declaration", "func_literal"),
		IdentifierKinds: set("identifier", "field_identifier", "package_identifier", "type_identifier"),
		NumberKinds:     set("int_literal", "float_literal", "imaginary_literal"),
		StringKinds:     set("interpreted_string_literal", "raw_string_literal", "rune_literal"),
		BoolKinds:       set("true", "false"),
		CommentKinds:    set("comment"),
		ContainerKinds:  set("block", "statement_list", "source_file"),
		ImportKinds:     set("import_spec"),
		CallKinds:       set("call_expression"),
		DefinitionFields: map[string]string{
			"function_declaration":  "name",
			"method_declaration":    "name",
			"short_var_declaration": "left",
			"var_spec":              "name",
			"const_spec":            "name",
			"parameter_declaration": "name",
			"range_clause":          "left",
		},
	},
	{
		Name:            "javascript",
		Extensions:      []string{".js", ".jsx", ".mjs", ".cjs"},
		LineComments:    []string{"//"},
		BlockComment:    cStyle,
		HasGrammar:      true,
		FunctionKinds:   set("function_declaration", "function_expression", "function", "arrow_function", "method_definition", "generator_function_declaration"),
		IdentifierKinds: set("identifier", "property_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern", "private_property_identifier"),
		NumberKinds:     set("number"),
		StringKinds:     set("string", "template_string", "regex"),
		BoolKinds:       set("true", "false"),
		CommentKinds:    set("comment"),
		ContainerKinds:  set("statement_block", "program"),
		ImportKinds:     set("import_statement"),
		CallKinds:       set("call_expression"),
		DefinitionFields: map[string]string{
			"function_declaration": "name",
			"method_definition":    "name",
			"variable_declarator":  "name",
			"formal_parameters":    "",
		},
	},
	{
		Name:            "typescript",
		Extensions:      []string{".ts", ".mts", ".cts"},
		LineComments:    []string{"//"},
		BlockComment:    cStyle,
		HasGrammar:      true,
		FunctionKinds:   set("function_declaration", "function_expression", "function", "arrow_function", "method_definition", "generator_function_declaration"),
		IdentifierKinds: set("identifier", "property_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern", "private_property_identifier", "type_identifier"),
		NumberKinds:     set("number"),
		StringKinds:     set("string", "template_string", "regex"),
		BoolKinds:       set("true", "false"),
		CommentKinds:    set("comment"),
		ContainerKinds:  set("statement_block", "program"),
		ImportKinds:     set("import_statement"),
		CallKinds:       set("call_expression"),
		DefinitionFields: map[string]string{
			"function_declaration": "name",
			"method_definition":    "name",
			"variable_declarator":  "name",
			"required_parameter":   "pattern",
			"optional_parameter":   "pattern",
		},
	},
	{
		Name:            "tsx",
		Extensions:      []string{".tsx"},
		LineComments:    []string{"//"},
		BlockComment:    cStyle,
		HasGrammar:      true,
		FunctionKinds:   set("function_declaration", "function_expression", "function", "arrow_function", "method_definition", "generator_function_declaration"),
		IdentifierKinds: set("identifier", "property_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern", "private_property_identifier", "type_identifier"),
		NumberKinds:     set("number"),
		StringKinds:     set("string", "template_string", "regex"),
		BoolKinds:       set("true", "false"),
		CommentKinds:    set("comment"),
		ContainerKinds:  set("statement_block", "program"),
		ImportKinds:     set("import_statement"),
		CallKinds:       set("call_expression"),
		DefinitionFields: map[string]string{
			"function_declaration": "name",
			"method_definition":    "name",
			"variable_declarator":  "name",
			"required_parameter":   "pattern",
			"optional_parameter":   "pattern",
		},
	},
	{
		Name:            "java",
		Extensions:      []string{".java"},
		LineComments:    []string{"//"},
		BlockComment:    cStyle,
		HasGrammar:      true,
		FunctionKinds:   set("method_declaration", "constructor_declaration", "lambda_expression"),
		IdentifierKinds: set("identifier", "type_identifier"),
		NumberKinds:     set("decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal", "decimal_floating_point_literal", "hex_floating_point_literal"),
		StringKinds:     set("string_literal", "character_literal", "text_block"),
		BoolKinds:       set("true", "false"),
		CommentKinds:    set("line_comment", "block_comment"),
		ContainerKinds:  set("block", "constructor_body"),
		ImportKinds:     set("import_declaration"),
		CallKinds:       set("method_invocation"),
		DefinitionFields: map[string]string{
			"method_declaration":  "name",
			"variable_declarator": "name",
			"formal_parameter":    "name",
		},
	},
	{
		Name:            "rust",
		Extensions:      []string{".rs"},
		LineComments:    []string{"//"},
		BlockComment:    cStyle,
		HasGrammar:      true,
		FunctionKinds:   set("function_item", "closure_expression"),
		IdentifierKinds: set("identifier", "field_identifier", "type_identifier", "shorthand_field_identifier"),
		NumberKinds:     set("integer_literal", "float_literal"),
		StringKinds:     set("string_literal", "raw_string_literal", "char_literal"),
		BoolKinds:       set("boolean_literal"),
		CommentKinds:    set("line_comment", "block_comment"),
		ContainerKinds:  set("block", "source_file"),
		ImportKinds:     set("use_declaration"),
		CallKinds:       set("call_expression", "macro_invocation"),
		DefinitionFields: map[string]string{
			"function_item":   "name",
			"let_declaration": "pattern",
			"parameter":       "pattern",
		},
	},

	// Scored from text only.
	{Name: "c", Extensions: []string{".c", ".h"}, LineComments: []string{"//"}, BlockComment: cStyle},
	{Name: "cpp", Extensions: []string{".cpp", ".cc", ".hpp"}, LineComments: []string{"//"}, BlockComment: cStyle},
	{Name: "csharp", Extensions: []string{".cs"}, LineComments: []string{"//"}, BlockComment: cStyle},
	{Name: "ruby", Extensions: []string{".rb"}, LineComments: []string{"#"}},
	{Name: "php", Extensions: []string{".php"}, LineComments: []string{"//", "#"}, BlockComment: cStyle},
	{Name: "swift", Extensions: []string{".swift"}, LineComments: []string{"//"}, BlockComment: cStyle},
	{Name: "kotlin", Extensions: []string{".kt"}, LineComments: []string{"//"}, BlockComment: cStyle},
	{Name: "shell", Extensions: []string{".sh", ".bash"}, LineComments: []string{"#"}},
}

var byExtension = func() map[string]*Language {
	out := make(map[string]*Language)
	for _, lang := range languages {
		for _, ext := range lang.Extensions {
			out[ext] = lang
		}
	}
	return out
}()

// LanguageForPath resolves a language by file extension.
func LanguageForPath(path string) (*Language, bool) {
	lang, ok := byExtension[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

func LanguageByName(name string) (*Language, bool) {
	for _, lang := range languages {
		if lang.Name == name {
			return lang, true
		}
	}
	return nil, false
}

func SupportedExtensions() []string {
	out := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsComment reports whether a trimmed source line opens with one of the
// language's comment markers.
func (l *Language) IsComment(trimmed string) bool {
	for _, prefix := range l.LineComments {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	if l.BlockComment[0] == "" {
		return false
	}
	if strings.HasPrefix(trimmed, l.BlockComment[0]) || trimmed == "*" || trimmed == l.BlockComment[1] {
		return true
	}
	// continuation lines of a /** ... */ block
	if strings.HasPrefix(trimmed, "* ") {
		return true
	}
	return false
}

// CommentBody strips the comment marker and surrounding whitespace.
func (l *Language) CommentBody(trimmed string) string {
	for _, prefix := range l.LineComments {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	if open := l.BlockComment[0]; open != "" {
		trimmed = strings.TrimPrefix(trimmed, open)
		trimmed = strings.TrimSuffix(trimmed, l.BlockComment[1])
		trimmed = strings.TrimLeft(trimmed, "*")
	}
	return strings.TrimSpace(trimmed)
}
