package pkg

import (
	"regexp"
	"slices"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "incpath" {
		t.Errorf("Expected Name to be %q, got %q", "incpath", Name)
	}
}

func TestVersion(t *testing.T) {
	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

	if !semver.MatchString(Version) {
		t.Errorf("Version %q is not a trimmed semantic version", Version)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain %q", "ardnew")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}
