// Package frontmatter parses and formats YAML frontmatter in markdown
// builtin manifests.
package frontmatter

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for malformed documents.
var (
	// ErrMissingFrontmatter is returned when the document does not start
	// with a "---" line.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated is returned when the closing "---" line is missing.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")
)

// MustParse extracts YAML frontmatter into matter and returns the body that
// follows it. Documents without frontmatter are rejected.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}

	header, body, err := split(content)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(header, matter); err != nil {
		return nil, errors.Wrap(err, "parsing frontmatter")
	}
	return body, nil
}

// split separates the frontmatter block from the body. Both LF and CRLF
// line endings are accepted.
func split(content []byte) (header, body []byte, err error) {
	rest, ok := cutLine(content)
	if !ok {
		return nil, nil, ErrMissingFrontmatter
	}

	offset := 0
	for offset <= len(rest) {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest) + 1
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if strings.TrimRight(string(line), "\r") == "---" {
			header = rest[:offset]
			if next <= len(rest) {
				body = rest[next:]
			}
			return header, trimLeadingNewline(body), nil
		}
		offset = next
	}
	return nil, nil, ErrUnterminated
}

// cutLine removes an opening "---" line.
func cutLine(content []byte) ([]byte, bool) {
	switch {
	case bytes.HasPrefix(content, []byte("---\n")):
		return content[4:], true
	case bytes.HasPrefix(content, []byte("---\r\n")):
		return content[5:], true
	default:
		return nil, false
	}
}

func trimLeadingNewline(b []byte) []byte {
	b = bytes.TrimPrefix(b, []byte("\r"))
	return bytes.TrimPrefix(b, []byte("\n"))
}

// Format formats content with YAML frontmatter.
// The matter struct is serialized to YAML and wrapped in "---" delimiters,
// followed by a blank line and the body.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}

	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
