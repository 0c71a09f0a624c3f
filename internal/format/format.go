package format

import "strings"

const sep = " | "

// Fields are the values shown on the statusline. Branch and Version are
// optional; Model and Dir are always printed, even when empty.
type Fields struct {
	Model   string
	Dir     string
	Branch  string
	Version string
}

// Palette wraps each value before it is placed in the line. A nil entry
// leaves the value as is.
type Palette struct {
	Model   func(string) string
	Dir     func(string) string
	Branch  func(string) string
	Version func(string) string
}

// Basename returns the text after the last '/', or the whole path when that
// is empty: "/a/b/c" -> "c", "proj" -> "proj", "/a/b/" -> "/a/b/".
func Basename(path string) string {
	if name := path[strings.LastIndex(path, "/")+1:]; name != "" {
		return name
	}
	return path
}

// Line renders "<model> | 📁 <dir>[ | 🌿 <branch>][ | ⚡ v<version>]".
func Line(f Fields) string {
	return Paint(f, Palette{})
}

// Paint is Line with each value passed through p first.
func Paint(f Fields, p Palette) string {
	var b strings.Builder
	b.WriteString(apply(p.Model, f.Model))
	b.WriteString(sep + "📁 " + apply(p.Dir, f.Dir))
	if f.Branch != "" {
		b.WriteString(sep + "🌿 " + apply(p.Branch, f.Branch))
	}
	if f.Version != "" {
		b.WriteString(sep + "⚡ " + apply(p.Version, "v"+f.Version))
	}
	return b.String()
}

func apply(fn func(string) string, s string) string {
	if fn == nil || s == "" {
		return s
	}
	return fn(s)
}
