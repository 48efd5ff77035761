package feel

import (
	"strings"

	plex "github.com/alecthomas/participle/v2/lexer"
)

// feelLexer tokenizes FEEL source text. Tokenization is built on
// participle's lexer.MustSimple: FEEL's token classes (keyword, name,
// number, string, temporal literal, punctuation) are exactly the shape
// that lexer is designed for. The grammar itself is not expressed
// through participle struct tags (see parser.go) because FEEL's
// precedence climbing, runtime name resolution, and
// independently-bracketed intervals don't fit a declarative struct
// grammar; participle is kept for tokenizing while its usual companion
// (the struct-tag grammar) is not.
var feelLexerDef = plex.MustSimple([]plex.SimpleRule{
	{Name: "Temporal", Pattern: `@"([^"\\]|\\.)*"`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Keyword", Pattern: `(?i)\b(and|or|not|between|in|if|then|else|for|return|some|every|satisfies|instance|of|null|true|false|function)\b`},
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Name", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op3", Pattern: `\*\*|<=|>=|!=|==|\.\.|&&|\|\|`},
	{Name: "Punct", Pattern: `[(){}\[\]:,.?+\-*/%<>=!]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Lex tokenizes src into a flat token slice (EOF-terminated), eliding
// whitespace. Errors surface as FeelError{Kind: "ParseError"}.
func Lex(src string) ([]Token, error) {
	lx, err := feelLexerDef.LexString("", src)
	if err != nil {
		return nil, errSyntax("lexing failed: %v", err)
	}

	symbols := feelLexerDef.Symbols()
	names := make(map[plex.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	var out []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, errSyntax("lexing failed: %v", err)
		}
		if tok.EOF() {
			out = append(out, Token{Type: TokEOF, Pos: tok.Pos.Offset})
			break
		}

		name := names[tok.Type]
		if name == "Whitespace" {
			continue
		}

		t := Token{Value: tok.Value, Pos: tok.Pos.Offset}
		switch name {
		case "Temporal":
			t.Type = TokTemporal
		case "String":
			t.Type = TokString
		case "Keyword":
			t.Type = TokKeyword
			t.Value = strings.ToLower(t.Value)
		case "Float", "Int":
			t.Type = TokNumber
		case "Name":
			if keywords[strings.ToLower(tok.Value)] {
				t.Type = TokKeyword
				t.Value = strings.ToLower(t.Value)
			} else {
				t.Type = TokName
			}
		case "Op3", "Punct":
			t.Type = TokPunct
		default:
			t.Type = TokPunct
		}
		out = append(out, t)
	}
	return out, nil
}
