package ontology

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Term is a single [Term] stanza of an OBO file.
type Term struct {
	ID         string
	Name       string
	Namespace  string
	Definition string
	Synonyms   []string
	Parents    []string // is_a targets
	Xrefs      []string
	Obsolete   bool
}

// Loader reads the terms of one ontology file.
type Loader interface {
	Load(file string) ([]*Term, error)
}

// TermBuilder creates the loader used for an ontology directory.
type TermBuilder interface {
	NewOBOLoader(dir string) (Loader, error)
}

// DefaultTermBuilder builds OBO 1.2 loaders.
type DefaultTermBuilder struct{}

// NewOBOLoader returns an OBOLoader reading files below dir.
func (DefaultTermBuilder) NewOBOLoader(dir string) (Loader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("ontology directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ontology directory: %s is not a directory", dir)
	}
	return &OBOLoader{dir: dir}, nil
}

// OBOLoader parses OBO files from a directory. Files ending in .gz are
// decompressed.
type OBOLoader struct {
	dir string
}

// Load parses file, relative to the loader directory.
func (l *OBOLoader) Load(file string) ([]*Term, error) {
	f, err := os.Open(filepath.Join(l.dir, file))
	if err != nil {
		return nil, fmt.Errorf("open ontology: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(file, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return ParseOBO(r)
}

// ParseOBO reads the [Term] stanzas of an OBO document. Header tags and
// other stanza types are ignored.
func ParseOBO(r io.Reader) ([]*Term, error) {
	var (
		terms   []*Term
		current *Term
		inTerm  bool
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if current.ID == "" {
			return errors.New("term stanza without id")
		}
		terms = append(terms, current)
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flush(); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			inTerm = line == "[Term]"
			if inTerm {
				current = &Term{}
			}
			continue
		}
		if !inTerm {
			continue
		}

		tag, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: malformed tag-value pair %q", lineNo, line)
		}
		value = strings.TrimSpace(value)

		switch tag {
		case "id":
			current.ID = stripComment(value)
		case "name":
			current.Name = value
		case "namespace":
			current.Namespace = value
		case "def":
			current.Definition = quoted(value)
		case "synonym":
			current.Synonyms = append(current.Synonyms, quoted(value))
		case "is_a":
			current.Parents = append(current.Parents, firstField(stripComment(value)))
		case "xref":
			current.Xrefs = append(current.Xrefs, firstField(stripComment(value)))
		case "is_obsolete":
			current.Obsolete = value == "true"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ontology: %w", err)
	}
	if err := flush(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo, err)
	}
	return terms, nil
}

// stripComment removes a trailing "! comment".
func stripComment(s string) string {
	if i := strings.Index(s, " !"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// quoted returns the leading double-quoted string of s, honouring
// backslash escapes. Values that are not quoted are returned unchanged.
func quoted(s string) string {
	if !strings.HasPrefix(s, `"`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, c := range s[1:] {
		switch {
		case escaped:
			b.WriteRune(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return b.String()
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
