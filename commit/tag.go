package commit

import (
	"bytes"
	"io"
	"text/template"
)

const DefaultTagTemplate = `v{{- .Version -}}`

type TagData struct {
	Version *Version
}

// Tag renders tag names from a go text/template, so projects can keep
// their own tag shapes while the versioner stays fixed.
type Tag struct {
	t *template.Template
}

func NewTag(s string) (*Tag, error) {
	name := ""
	if s != "" {
		name = "custom_tag"
	}
	tmpl := s
	if tmpl == "" {
		tmpl = DefaultTagTemplate
	}
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return nil, err
	}
	return &Tag{t: t}, nil
}

func (t *Tag) Execute(w io.Writer, d TagData) error {
	return t.t.Execute(w, d)
}

func (t *Tag) ExecuteString(d TagData) (string, error) {
	b := &bytes.Buffer{}
	if err := t.Execute(b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
