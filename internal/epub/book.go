// Package epub provides the in-memory publication model and the ePub 2/3 packager.
package epub

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Media types used in the manifest.
const (
	MediaTypeXHTML = "application/xhtml+xml"
	MediaTypeCSS   = "text/css"
	MediaTypeNCX   = "application/x-dtbncx+xml"
)

// Sentinel errors returned by the publication model.
var (
	// ErrCoverExists is returned by AddCover when the book already has a cover.
	ErrCoverExists = errors.New("epub: cover already set")

	// ErrUnsupportedVersion is returned for package versions other than 2 and 3.
	ErrUnsupportedVersion = errors.New("epub: unsupported package version")
)

// Creator is a dc:creator entry with its MARC relator role.
type Creator struct {
	Name string
	Role string
}

// Item is a file registered in the package.
type Item struct {
	ID         string
	SrcPath    string // file to copy when Inline is false
	DestPath   string // path under OPS/, unique within the book
	Content    string // markup written when Inline is true
	Inline     bool
	MediaType  string
	Properties []string
}

// Book is the publication being assembled.
// A Book is owned by one conversion at a time.
type Book struct {
	Version   int
	ID        uuid.UUID
	Title     string
	Publisher string
	Creators  []Creator
	Languages []string
	Cover     *Item
	TOC       *TocNode
	TOCDepth  int    // deepest heading-bearing section, used by the NCX
	TOCStyle  string // CSS list-style-type for the nav document, "none" hides markers

	// Now returns the time used for dc:date and dcterms:modified.
	Now func() time.Time

	items []*Item
	index map[string]*Item
	ids   map[string]bool
}

// NewBook creates an empty book for package version 2 or 3 with a fresh identifier.
func NewBook(version int) (*Book, error) {
	if version != 2 && version != 3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	id, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate book identifier: %w", err)
	}
	return &Book{
		Version:  version,
		ID:       id,
		TOC:      &TocNode{},
		TOCStyle: "none",
		Now:      time.Now,
		index:    make(map[string]*Item),
		ids:      make(map[string]bool),
	}, nil
}

// Items returns the registered items in insertion order.
func (b *Book) Items() []*Item {
	out := make([]*Item, len(b.items))
	copy(out, b.items)
	return out
}

// Item looks up an item by destination path.
func (b *Book) Item(destPath string) (*Item, bool) {
	item, ok := b.index[destPath]
	return item, ok
}

func (b *Book) nextID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, len(b.items)+1)
}

func (b *Book) insert(item *Item) *Item {
	b.items = append(b.items, item)
	b.index[item.DestPath] = item
	b.ids[item.ID] = true
	return item
}

// AddCSS registers a stylesheet copied from srcPath.
func (b *Book) AddCSS(srcPath, destPath string) *Item {
	if item, ok := b.index[destPath]; ok {
		return item
	}
	return b.insert(&Item{
		ID:        b.nextID("css"),
		SrcPath:   srcPath,
		DestPath:  destPath,
		MediaType: MediaTypeCSS,
	})
}

// AddInlineCSS registers a stylesheet whose text is generated rather than copied.
func (b *Book) AddInlineCSS(destPath, css string) *Item {
	if item, ok := b.index[destPath]; ok {
		return item
	}
	return b.insert(&Item{
		ID:        b.nextID("css"),
		DestPath:  destPath,
		Content:   css,
		Inline:    true,
		MediaType: MediaTypeCSS,
	})
}

// AddImage registers an image copied from srcPath. Registering the same
// destination twice returns the first item.
func (b *Book) AddImage(srcPath, destPath string) *Item {
	if item, ok := b.index[destPath]; ok {
		return item
	}
	item := &Item{
		SrcPath:   srcPath,
		DestPath:  destPath,
		MediaType: imageMediaType(srcPath),
	}
	switch destPath {
	case "cover.jpg", "cover.png", "cover.gif":
		// only the first cover-named image takes the reserved id
		if !b.ids["cover-image"] {
			item.ID = "cover-image"
			item.Properties = []string{"cover-image"}
		}
	}
	if item.ID == "" {
		item.ID = b.nextID("image")
	}
	return b.insert(item)
}

// AddHTML registers a generated XHTML document.
func (b *Book) AddHTML(destPath, html string, properties ...string) *Item {
	if item, ok := b.index[destPath]; ok {
		return item
	}
	item := &Item{
		DestPath:   destPath,
		Content:    html,
		Inline:     true,
		MediaType:  MediaTypeXHTML,
		Properties: properties,
	}
	if destPath == "cover.html" {
		item.ID = "cover"
	} else {
		item.ID = b.nextID("html")
	}
	return b.insert(item)
}

// AddCover registers srcPath as the cover image. A book has at most one cover.
func (b *Book) AddCover(srcPath string) (*Item, error) {
	if b.Cover != nil {
		return nil, fmt.Errorf("%w: %s", ErrCoverExists, b.Cover.DestPath)
	}
	destPath := "cover" + strings.ToLower(filepath.Ext(srcPath))
	b.Cover = b.AddImage(srcPath, destPath)
	return b.Cover, nil
}

// AddCreator appends a creator. An empty role defaults to "aut".
func (b *Book) AddCreator(name, role string) {
	if role == "" {
		role = "aut"
	}
	b.Creators = append(b.Creators, Creator{Name: name, Role: role})
}

// AddLang appends a language after canonicalising it as a BCP 47 tag.
func (b *Book) AddLang(tag string) error {
	t, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", tag, err)
	}
	b.Languages = append(b.Languages, t.String())
	return nil
}

// NoteTOCDepth records that a heading-bearing section was seen at depth.
func (b *Book) NoteTOCDepth(depth int) {
	if depth > b.TOCDepth {
		b.TOCDepth = depth
	}
}

// imageMediaType returns the MIME type for an image based on extension.
func imageMediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
