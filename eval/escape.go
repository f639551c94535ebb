package eval

import "strings"

var (
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"`", "&#x60;",
		"=", "&#x3D;",
	)
	unescaper = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#x27;", "'",
		"&#x60;", "`",
		"&#x3D;", "=",
	)
)

// Escape replaces the characters &<>"'`= with HTML entities.
func Escape(s string) string {
	if !strings.ContainsAny(s, "&<>\"'`=") {
		return s
	}

	return escaper.Replace(s)
}

// Unescape reverses [Escape].
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}

	return unescaper.Replace(s)
}
