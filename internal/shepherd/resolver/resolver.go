// Package resolver implements the lazy ${VAR} / #{root.path} placeholder
// substitution described in spec.md §4.2. Rather than the original
// source's attribute-interception trick (a per-instance flag consulted
// on every field read), this is the "materialize two parallel
// representations and swap by request" option spec.md's Design Notes
// endorse as a neutral re-architecture: Resolve walks a deep copy of the
// tree and substitutes every string field in place, while the caller's
// original (raw) tree is left untouched for serialization.
package resolver

import (
	"os"
	"reflect"
	"regexp"
	"strings"
)

// ValueStore is the flat ${NAME} -> value mapping produced by the value
// store (spec.md §4.1).
type ValueStore map[string]string

var (
	varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	refPattern = regexp.MustCompile(`#\{([a-z]+)((?:\.[A-Za-z0-9_]+)+)\}`)
)

// roots is the set of reference-root symbols spec.md §4.2 names:
// cfg/env/svc/net/vol/cnt/probe.
var roots = map[string]bool{
	"cfg": true, "env": true, "svc": true,
	"net": true, "vol": true, "cnt": true, "probe": true,
}

// context carries the nearest-ancestor binding for each root symbol as
// the tree is walked. Siblings never see each other's bindings; a
// child sees everything bound above it, per spec.md §4.2.
type context struct {
	vs       ValueStore
	bindings map[string]reflect.Value
}

func (c context) with(root string, v reflect.Value) context {
	next := context{vs: c.vs, bindings: make(map[string]reflect.Value, len(c.bindings)+1)}
	for k, val := range c.bindings {
		next.bindings[k] = val
	}
	next.bindings[root] = v
	return next
}

// Resolve substitutes every string field (and the elements of every
// []string / map[string]string field) reachable from root, using vs for
// ${VAR} lookups (falling back to the process environment) and the
// ancestor bindings accumulated during the walk for #{root.path}
// lookups. root must be a pointer to a struct; it is mutated in place,
// so callers resolve a deep copy (see configmgr's deep-copy helpers),
// never the tree of record.
func Resolve(root any, vs ValueStore) {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	ctx := context{vs: vs, bindings: map[string]reflect.Value{}}
	walk(rv, ctx)
}

// rootSymbolFor returns the reference-root symbol a struct type binds
// when entered, or "" if the type isn't a reference root.
func rootSymbolFor(t reflect.Type) string {
	switch t.Name() {
	case "GlobalConfig":
		return "cfg"
	case "Environment":
		return "env"
	case "Service":
		return "svc"
	case "Network":
		return "net"
	case "Volume":
		return "vol"
	case "Container":
		return "cnt"
	case "Probe":
		return "probe"
	default:
		return ""
	}
}

func walk(v reflect.Value, ctx context) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		walk(v.Elem(), ctx)
	case reflect.Struct:
		if sym := rootSymbolFor(v.Type()); sym != "" {
			ctx = ctx.with(sym, v)
		}
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			fv := v.Field(i)
			name := yamlFieldName(f)
			switch fv.Kind() {
			case reflect.String:
				if fv.CanSet() {
					fv.SetString(substitute(fv.String(), name, ctx))
				}
			case reflect.Slice:
				walkSliceOrMap(fv, name, ctx)
			case reflect.Map:
				walkSliceOrMap(fv, name, ctx)
			default:
				walk(fv, ctx)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), ctx)
		}
	}
}

func walkSliceOrMap(fv reflect.Value, fieldName string, ctx context) {
	switch fv.Kind() {
	case reflect.Slice:
		elemIsString := fv.Type().Elem().Kind() == reflect.String
		for i := 0; i < fv.Len(); i++ {
			if elemIsString {
				e := fv.Index(i)
				if e.CanSet() {
					e.SetString(substitute(e.String(), fieldName, ctx))
				}
			} else {
				walk(fv.Index(i), ctx)
			}
		}
	case reflect.Map:
		if fv.Type().Elem().Kind() != reflect.String {
			for _, k := range fv.MapKeys() {
				walk(fv.MapIndex(k), ctx)
			}
			return
		}
		for _, k := range fv.MapKeys() {
			orig := fv.MapIndex(k).String()
			fv.SetMapIndex(k, reflect.ValueOf(substitute(orig, fieldName, ctx)))
		}
	}
}

// yamlFieldName returns the serialized (snake_case) field name used for
// the "_path" suffix check, since spec.md §4.2 means the document's
// field name, not the Go identifier (e.g. yaml "dockerfile_path", not
// the Go field DockerfilePath).
func yamlFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	name := strings.Split(tag, ",")[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// substitute applies ${VAR} then #{root.path} substitution to s, then
// (if fieldName ends in "_path") expands a leading "~". Unresolved
// placeholders of either form are left as literal text: resolution
// misses are never fatal (spec.md §7).
func substitute(s string, fieldName string, ctx context) string {
	s = varPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := varPattern.FindStringSubmatch(m)[1]
		if v, ok := ctx.vs[name]; ok {
			return v
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})

	s = refPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := refPattern.FindStringSubmatch(m)
		root, path := sub[1], strings.TrimPrefix(sub[2], ".")
		if !roots[root] {
			return m
		}
		bound, ok := ctx.bindings[root]
		if !ok {
			return m
		}
		resolved, ok := walkPath(bound, strings.Split(path, "."))
		if !ok {
			return m
		}
		return resolved
	})

	if strings.HasSuffix(fieldName, "_path") {
		s = expandTilde(s)
	}
	return s
}

// walkPath follows a dotted accessor path of exported field names
// (case-insensitive match against YAML-ish snake_case segments) from v,
// returning the stringified leaf value.
func walkPath(v reflect.Value, segments []string) (string, bool) {
	cur := v
	for _, seg := range segments {
		for cur.Kind() == reflect.Ptr {
			if cur.IsNil() {
				return "", false
			}
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			return "", false
		}
		field := findFieldByTag(cur, seg)
		if !field.IsValid() {
			return "", false
		}
		cur = field
	}
	for cur.Kind() == reflect.Ptr {
		if cur.IsNil() {
			return "", false
		}
		cur = cur.Elem()
	}
	if cur.Kind() != reflect.String {
		return "", false
	}
	return cur.String(), true
}

// findFieldByTag finds a struct field whose yaml tag name (before any
// comma option) matches name, case-insensitively.
func findFieldByTag(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		tagName := strings.Split(tag, ",")[0]
		if strings.EqualFold(tagName, name) || strings.EqualFold(f.Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

func expandTilde(s string) string {
	if s == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return s
		}
		return home
	}
	if strings.HasPrefix(s, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return s
		}
		return home + s[1:]
	}
	return s
}
