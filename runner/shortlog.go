package runner

import (
	"io"
	"text/template"

	"github.com/SofairOfficial/sleppa/commit"
)

const defaultShortlogTemplate = `release: v{{ .Version.Version }}

This release contains the following commits:
{{ range $commit := .Version.AllCommits }}
* {{ $commit.Subject }} ({{ $commit.ShortID }})
{{ end }}
`

type shortlogData struct {
	Version *commit.Version
}

func (r *Runner) shortlog(w io.Writer, ver *commit.Version) error {
	if ver == nil {
		return nil
	}
	t, err := template.New("shortlog").Parse(defaultShortlogTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, shortlogData{Version: ver})
}
