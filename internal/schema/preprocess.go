package schema

import (
	"regexp"
)

// metaTypeName is the synthetic type the file header is rewritten into
const metaTypeName = "_Schema"

// headerDirectiveRegex matches @genpipe(...) at the start of a line.
// One level of nested parentheses inside the arguments is tolerated.
var headerDirectiveRegex = regexp.MustCompile(`(?m)^@genpipe\s*\(((?:[^()]*|\([^)]*\))*)\)`)

// PreprocessGraphQL rewrites the `@genpipe(...)` file header into a valid
// GraphQL type so the document can be parsed by a standard SDL parser
func PreprocessGraphQL(input string) string {
	return headerDirectiveRegex.ReplaceAllStringFunc(input, func(match string) string {
		args := headerDirectiveRegex.FindStringSubmatch(match)[1]
		return `type ` + metaTypeName + ` {
  _: String @genpipe(` + args + `)
}`
	})
}
