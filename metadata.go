package sim

// Metadata is a caller-location handle that can be attached to a Check or
// log line, mirroring the original harness's call-site metadata (file,
// line, the name of the thing being checked, its arguments as rendered
// text, and a free-form comment) — spec.md §6's external metadata-handle
// interface. It's a plain value type; there is nothing to construct
// beyond a literal or EmptyMetadata.
type Metadata struct {
	File       string
	Line       int
	ObjectName string
	Args       []string
	Comments   string
}

// EmptyMetadata is the default, information-free Metadata context used
// when a caller has nothing more specific to attach.
var EmptyMetadata = Metadata{}

// IsEmpty reports whether m carries no information beyond the zero value.
func (m Metadata) IsEmpty() bool {
	return m.File == "" && m.Line == 0 && m.ObjectName == "" && len(m.Args) == 0 && m.Comments == ""
}

func (m Metadata) fields() []any {
	if m.IsEmpty() {
		return nil
	}
	fields := make([]any, 0, 10)
	if m.File != "" {
		fields = append(fields, "meta_file", m.File, "meta_line", m.Line)
	}
	if m.ObjectName != "" {
		fields = append(fields, "meta_object", m.ObjectName)
	}
	if len(m.Args) != 0 {
		fields = append(fields, "meta_args", m.Args)
	}
	if m.Comments != "" {
		fields = append(fields, "meta_comments", m.Comments)
	}
	return fields
}

// CheckWithMetadata behaves like Check, additionally attaching m's fields
// to the logged record when non-empty.
func CheckWithMetadata(r *Runner, cond bool, tag string, m Metadata, kv ...any) bool {
	return Check(r, cond, tag, append(append([]any{}, kv...), m.fields()...)...)
}
