package addon

import "regexp"

const (
	MetamodName = "Metamod"
	CSSName     = "CounterStrikeSharp"

	DefaultMetamodIndex = "https://mms.alliedmods.net/mmsdrop/2.0/"
	DefaultCSSRepo      = "roflmuffin/CounterStrikeSharp"
)

var (
	metamodFilePattern    = regexp.MustCompile(`^mmsource-.*-linux\.tar\.gz$`)
	metamodVersionPattern = regexp.MustCompile(`git\d+`)
	cssAssetPattern       = regexp.MustCompile(`^counterstrikesharp-with-runtime-.*linux.*\.zip$`)
)

// MetamodTarget scrapes the Metamod:Source 2.0 snapshot index.
func MetamodTarget(indexURL string) Target {
	if indexURL == "" {
		indexURL = DefaultMetamodIndex
	}
	return Target{
		Name:       MetamodName,
		TempSubdir: "metamod",
		Source: &ScrapeSource{
			IndexURL:       indexURL,
			FilePattern:    metamodFilePattern,
			VersionPattern: metamodVersionPattern,
		},
	}
}

// CounterStrikeSharpTarget follows the CounterStrikeSharp GitHub releases,
// using the build that bundles the .NET runtime.
func CounterStrikeSharpTarget(repo, apiURL string) Target {
	if repo == "" {
		repo = DefaultCSSRepo
	}
	return Target{
		Name:       CSSName,
		TempSubdir: "counterstrikesharp",
		Source: &GitHubSource{
			Repo:         repo,
			AssetPattern: cssAssetPattern,
			BaseURL:      apiURL,
		},
	}
}
