package config

// GetDefault returns the stock configuration: conventional-commit style
// release rules matching the contributor's bible, grouped into the three
// standard changelog categories.
func GetDefault() Config {
	return Config{
		Branches:      []string{"main", "master"},
		ChangelogPath: "CHANGELOG.md",
		Rules: []Rule{
			{
				Pattern:     `^(?P<type>break){1}(?P<scope>\(\S.*\S\))?:\s.*[a-z0-9]$`,
				ReleaseType: "MAJOR",
				Category:    "Major changes",
			},
			{
				Pattern:     `^(?P<type>build|ci|docs|feat){1}(?P<scope>\(\S.*\S\))?:\s.*[a-z0-9]$`,
				ReleaseType: "MINOR",
				Category:    "Minor changes",
			},
			{
				Pattern:     `^(?P<type>fix|perf|refac|sec|style|test){1}(?P<scope>\(\S.*\S\))?:\s.*[a-z0-9]$`,
				ReleaseType: "PATCH",
				Category:    "Patch changes",
			},
		},
	}
}
