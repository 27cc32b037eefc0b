package index

import (
	"strings"
	"unicode"
)

// NormalizeIndexName derives the canonical index name for a label/property
// pair: CamelCase becomes snake_case, a trailing "_embedding" on the property
// is dropped, and the result is "{label}_{property}_vector".
//
//	NormalizeIndexName("Document", "description_embedding") == "document_description_vector"
//	NormalizeIndexName("ReviewComment", "content")          == "review_comment_content_vector"
func NormalizeIndexName(label, property string) string {
	prop := toSnake(property)
	prop = strings.TrimSuffix(prop, "_embedding")
	return toSnake(label) + "_" + prop + "_vector"
}

// toSnake converts CamelCase or mixedCase to snake_case. Existing
// underscores are preserved.
func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
