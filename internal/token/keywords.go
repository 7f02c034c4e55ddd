package token

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, int(KwWhile-KwAs)+1)
	for k := KwAs; k <= KwWhile; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// LookupKeyword reports the keyword kind for ident. Keywords are case sensitive,
// so "self" and "Self" map to different kinds.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// RawPrefix marks a raw identifier such as r#fn.
const RawPrefix = "r#"

// CanBeRaw reports whether a keyword may be written as a raw identifier.
// Path keywords are excluded the same way rustc rejects r#self.
func CanBeRaw(ident string) bool {
	switch ident {
	case "self", "Self", "super", "crate", "_":
		return false
	}
	return true
}
