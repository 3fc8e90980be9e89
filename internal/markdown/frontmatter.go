package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// FrontMatter captures the metadata block carried by file-backed posts.
// Unknown keys are preserved in Custom so a parse/serialize round trip does
// not drop author-supplied fields.
type FrontMatter struct {
	Title    string         `yaml:"title,omitempty"`
	Date     string         `yaml:"date,omitempty"`
	Slug     string         `yaml:"slug,omitempty"`
	ImageURL string         `yaml:"imageUrl,omitempty"`
	Excerpt  string         `yaml:"excerpt,omitempty"`
	Custom   map[string]any `yaml:",inline"`
}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. A document without a frontmatter block yields an
// empty FrontMatter and the unmodified source as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}

	return meta, body, nil
}

// SerializeDocument assembles a frontmatter-delimited Markdown document. The
// body is written verbatim after the closing delimiter so round trips keep it
// byte-identical.
func SerializeDocument(meta FrontMatter, body []byte) ([]byte, error) {
	var buf bytes.Buffer

	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("serialize frontmatter: %w", err)
	}

	buf.WriteString("---\n")
	buf.Write(encoded)
	buf.WriteString("---\n")
	buf.Write(body)

	return buf.Bytes(), nil
}

// ParsedDate interprets the frontmatter date field. Day precision dates and
// RFC3339 timestamps are both accepted; anything else yields a nil result.
func (fm FrontMatter) ParsedDate() *time.Time {
	raw := strings.TrimSpace(fm.Date)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "January 2, 2006"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}
