package mapfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPath is the pre-rendered map shipped next to the binary.
const DefaultPath = "drugmortmap.html"

var (
	ErrMapNotFound = errors.New("map fragment not found")
	ErrEmptyMap    = errors.New("map fragment is empty")
)

// Fragment is a standalone HTML document embedded verbatim in the dashboard.
type Fragment struct {
	Path  string
	Title string
	HTML  string
}

// Load reads the map fragment at path. The content is kept byte for byte;
// it is only parsed to reject empty documents and to pick up its title.
func Load(path string) (Fragment, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Fragment{}, fmt.Errorf("%w: %s", ErrMapNotFound, path)
	}
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to read map fragment: %w", err)
	}
	return Parse(path, data)
}

// Parse validates an in-memory fragment.
func Parse(path string, data []byte) (Fragment, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Fragment{}, fmt.Errorf("%w: %s", ErrEmptyMap, path)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to parse map fragment: %w", err)
	}

	// A map document always carries a body with at least an element or a script.
	body := doc.Find("body")
	if body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "" && doc.Find("script").Length() == 0 {
		return Fragment{}, fmt.Errorf("%w: %s has no content", ErrEmptyMap, path)
	}

	return Fragment{
		Path:  path,
		Title: strings.TrimSpace(doc.Find("head title").First().Text()),
		HTML:  string(data),
	}, nil
}
