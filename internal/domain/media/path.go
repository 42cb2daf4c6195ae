package media

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Kind namespaces uploads by the entity that owns them.
type Kind string

const (
	KindProfile Kind = "profiles"
	KindPost    Kind = "posts"

	uploadRoot = "uploads"
)

// InvalidImageMessage is returned for uploads without an image extension.
const InvalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Slugify lowercases value, drops accents and anything that is not a word
// character, whitespace or hyphen, then joins words with single hyphens.
func Slugify(value string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(value) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	s := slugStrip.ReplaceAllString(strings.ToLower(b.String()), "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}

// Ext returns the extension of filename the way most upload clients see it:
// a leading dot marks a hidden file, not an extension.
func Ext(filename string) string {
	base := strings.TrimLeft(filepath.Base(filename), ".")
	return filepath.Ext(base)
}

// IsImage reports whether filename carries an image extension. Stored files
// keep their extension, so this decides how they are served back.
func IsImage(filename string) bool {
	return imageExts[strings.ToLower(Ext(filename))]
}

// UploadPath builds uploads/<kind>/<slug(identity)>-<token><ext>. The token
// makes the name unique; existing files are never consulted.
func UploadPath(kind Kind, identity, filename string, token uuid.UUID) string {
	slug := Slugify(identity)
	if slug == "" {
		slug = "user"
	}
	name := slug + "-" + token.String() + Ext(filename)
	return path.Join(uploadRoot, string(kind), name)
}
