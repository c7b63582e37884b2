// Package valuestore reads the user's key=value value file (spec.md
// §4.1) and performs single-pass ${NAME} interpolation against keys
// already defined earlier in the file, falling back to the process
// environment.
package valuestore

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// Load reads path as a sequence of "key=value" lines, skipping blank
// lines and lines beginning with "#". A line with no "=" is a fatal
// config error. The returned mapping is the sole ${...} source for the
// rest of shpctl.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shperr.Filesystem(err, "failed to open value file %q", path)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, shperr.Config(nil, "malformed line %d in %q: missing '='", lineNo, path)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		values[key] = interpolate(val, values)
	}
	if err := scanner.Err(); err != nil {
		return nil, shperr.Filesystem(err, "failed to read value file %q", path)
	}
	return values, nil
}

// interpolate performs a single pass of ${NAME} substitution against
// the keys already defined in values, falling back to the process
// environment; an unresolved name is left literal.
func interpolate(val string, values map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(val) {
		if val[i] == '$' && i+1 < len(val) && val[i+1] == '{' {
			end := strings.IndexByte(val[i+2:], '}')
			if end >= 0 {
				name := val[i+2 : i+2+end]
				if v, ok := values[name]; ok {
					b.WriteString(v)
				} else if v, ok := os.LookupEnv(name); ok {
					b.WriteString(v)
				} else {
					b.WriteString(fmt.Sprintf("${%s}", name))
				}
				i += 2 + end + 1
				continue
			}
		}
		b.WriteByte(val[i])
		i++
	}
	return b.String()
}
