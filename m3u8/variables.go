package m3u8

import "strings"

// resolver holds the variables declared so far by EXT-X-DEFINE tags.
// References are resolved in a single forward pass: a value is only
// visible to lines after its definition and substituted text is never
// scanned again.
type resolver struct {
	vars        map[string]string
	imports     map[string]string
	queryParams map[string]string
}

func newResolver(imports, queryParams map[string]string) *resolver {
	return &resolver{
		vars:        make(map[string]string),
		imports:     imports,
		queryParams: queryParams,
	}
}

// define binds d.Name and returns d with its resolved value.
func (r *resolver) define(d Define) (Define, error) {
	if _, ok := r.vars[d.Name]; ok {
		return d, &MalformedTagError{Tag: tagDefine, Reason: "variable " + d.Name + " is already defined"}
	}
	switch d.Type {
	case IMPORT:
		v, ok := r.imports[d.Name]
		if !ok {
			return d, &UnresolvedVariableError{Name: d.Name}
		}
		d.Value = v
	case QUERYPARAM:
		v, ok := r.queryParams[d.Name]
		if !ok {
			return d, &UnresolvedVariableError{Name: d.Name}
		}
		d.Value = v
	}
	r.vars[d.Name] = d.Value
	return d, nil
}

// expand replaces every {$name} reference in s. Text that only looks like a
// reference, because the name holds characters a variable name cannot
// have, is left alone.
func (r *resolver) expand(s string) (string, error) {
	if !strings.Contains(s, "{$") {
		return s, nil
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "{$")
		if i < 0 {
			break
		}
		end := strings.IndexByte(s[i+2:], '}')
		if end < 0 {
			break
		}
		name := s[i+2 : i+2+end]
		if !validVariableName(name) {
			b.WriteString(s[:i+2])
			s = s[i+2:]
			continue
		}
		v, ok := r.vars[name]
		if !ok {
			return "", &UnresolvedVariableError{Name: name}
		}
		b.WriteString(s[:i])
		b.WriteString(v)
		s = s[i+2+end+1:]
	}
	b.WriteString(s)
	return b.String(), nil
}

// expandAttributes substitutes references in quoted-string and
// hexadecimal-sequence values. A hexadecimal-sequence holding a reference
// is only recognized as such after the substitution.
func (r *resolver) expandAttributes(attrs AttributeList) (AttributeList, error) {
	for i, a := range attrs {
		quoted := a.Value.Kind == KindQuotedString
		hex := strings.HasPrefix(a.Value.Raw, "0x") || strings.HasPrefix(a.Value.Raw, "0X")
		if !quoted && !hex {
			continue
		}
		v, err := r.expand(a.Value.Raw)
		if err != nil {
			return nil, err
		}
		attrs[i].Value.Raw = v
		if !quoted {
			attrs[i].Value.Kind = classifyToken(v)
		}
	}
	return attrs, nil
}

// validVariableName reports whether s matches [a-zA-Z0-9_-]+.
func validVariableName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
