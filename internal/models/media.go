package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// PlaceholderImage is rendered when an item has no usable image.
const PlaceholderImage = "/placeholder.png"

// ImageShape tells which of the accepted JSON layouts an images value uses.
type ImageShape int

const (
	ImageShapeNone    ImageShape = iota // null or absent
	ImageShapeString                    // "https://..."
	ImageShapeStrings                   // ["https://...", ...]
	ImageShapeObjects                   // [{"url": "https://..."}, ...]
	ImageShapeObject                    // {"url": "https://..."}
	ImageShapeMixed                     // array of strings and {url} objects
	ImageShapeUnknown
)

func (s ImageShape) String() string {
	switch s {
	case ImageShapeNone:
		return "none"
	case ImageShapeString:
		return "string"
	case ImageShapeStrings:
		return "strings"
	case ImageShapeObjects:
		return "objects"
	case ImageShapeObject:
		return "object"
	case ImageShapeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// IsSafeImageSrc reports whether value may be used as an image source:
// a root-relative path or an absolute http(s) URL.
func IsSafeImageSrc(value string) bool {
	if strings.HasPrefix(value, "//") {
		return false
	}
	return strings.HasPrefix(value, "/") ||
		strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://")
}

// NormalizeImages flattens any accepted images layout into an ordered list
// of safe URLs. Entries that are empty or unsafe are dropped; nil and
// unrecognised values yield an empty list.
func NormalizeImages(v any) []string {
	urls := []string{}
	keep := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && IsSafeImageSrc(s) {
			urls = append(urls, s)
		}
	}

	switch x := v.(type) {
	case Images:
		return x.URLs()
	case *Images:
		if x == nil {
			return urls
		}
		return x.URLs()
	case string:
		keep(x)
	case []string:
		for _, s := range x {
			keep(s)
		}
	case []any:
		for _, entry := range x {
			if url, ok := imageEntryURL(entry); ok {
				keep(url)
			}
		}
	case map[string]any:
		if url, ok := imageEntryURL(x); ok {
			keep(url)
		}
	}
	return urls
}

// DisplayImages is NormalizeImages with the placeholder substituted for an
// empty result.
func DisplayImages(v any) []string {
	urls := NormalizeImages(v)
	if len(urls) == 0 {
		return []string{PlaceholderImage}
	}
	return urls
}

func imageEntryURL(entry any) (string, bool) {
	switch e := entry.(type) {
	case string:
		return e, true
	case map[string]any:
		url, ok := e["url"].(string)
		return url, ok
	}
	return "", false
}

func classifyImages(v any) ImageShape {
	switch x := v.(type) {
	case nil:
		return ImageShapeNone
	case string:
		return ImageShapeString
	case map[string]any:
		if _, ok := x["url"]; ok {
			return ImageShapeObject
		}
		return ImageShapeUnknown
	case []any:
		var strs, objs int
		for _, entry := range x {
			switch entry.(type) {
			case string:
				strs++
			case map[string]any:
				objs++
			default:
				return ImageShapeUnknown
			}
		}
		switch {
		case objs == 0:
			return ImageShapeStrings
		case strs == 0:
			return ImageShapeObjects
		default:
			return ImageShapeMixed
		}
	}
	return ImageShapeUnknown
}

// NormalizeSizes returns the declared size labels of a sizes value: array
// entries that are strings or {"label": ...} objects, trimmed, empties
// dropped. Anything that is not an array declares no sizes.
func NormalizeSizes(v any) []string {
	sizes := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}

	switch x := v.(type) {
	case Sizes:
		return x.Values()
	case *Sizes:
		if x == nil {
			return sizes
		}
		return x.Values()
	case []string:
		for _, s := range x {
			add(s)
		}
	case []any:
		for _, entry := range x {
			switch e := entry.(type) {
			case string:
				add(e)
			case map[string]any:
				if label, ok := e["label"].(string); ok {
					add(label)
				}
			}
		}
	}
	return sizes
}

// jsonColumn stores a free-form JSON document in a single column while
// keeping its decoded form around for normalization.
type jsonColumn struct {
	raw   json.RawMessage
	value any
}

func newJSONColumn(v any) jsonColumn {
	raw, err := json.Marshal(v)
	if err != nil {
		return jsonColumn{}
	}
	return jsonColumn{raw: raw, value: v}
}

// Raw returns the document exactly as it was received or stored.
func (c jsonColumn) Raw() json.RawMessage {
	return c.raw
}

// Decoded returns the document decoded into generic JSON values.
func (c jsonColumn) Decoded() any {
	return c.value
}

// IsNull reports whether no document is set.
func (c jsonColumn) IsNull() bool {
	return c.value == nil
}

// MarshalJSON implements json.Marshaler.
func (c jsonColumn) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *jsonColumn) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = jsonColumn{}
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	c.raw = append(json.RawMessage(nil), trimmed...)
	c.value = v
	return nil
}

// Value implements driver.Valuer.
func (c jsonColumn) Value() (driver.Value, error) {
	if c.value == nil {
		return nil, nil
	}
	return string(c.raw), nil
}

// Scan implements sql.Scanner.
func (c *jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = jsonColumn{}
		return nil
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into a JSON column", src)
	}
}

// GormDataType implements schema.GormDataTypeInterface.
func (jsonColumn) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type for the active dialect.
func (jsonColumn) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	default:
		return "TEXT"
	}
}

// Images is the stored images value of a ShopItem. It accepts a bare URL, a
// list of URLs, a list of {url} objects or a single {url} object, keeps the
// document as submitted and normalizes it on read.
type Images struct {
	jsonColumn
}

// NewImages builds an images value holding a plain list of URLs.
func NewImages(urls ...string) Images {
	list := make([]any, len(urls))
	for i, u := range urls {
		list[i] = u
	}
	return Images{newJSONColumn(list)}
}

// Shape reports which layout the stored document uses.
func (im Images) Shape() ImageShape {
	return classifyImages(im.value)
}

// IsEmpty reports whether no images were provided at all.
func (im Images) IsEmpty() bool {
	if s, ok := im.value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return im.value == nil
}

// URLs returns the safe image URLs in order.
func (im Images) URLs() []string {
	return NormalizeImages(im.value)
}

// Display returns URLs, or the placeholder when none survive.
func (im Images) Display() []string {
	return DisplayImages(im.value)
}

// Sizes is the stored sizes value of a ShopItem. Items without declared
// sizes are non-sized merchandise.
type Sizes struct {
	jsonColumn
}

// NewSizes builds a sizes value from plain labels.
func NewSizes(labels ...string) Sizes {
	list := make([]any, len(labels))
	for i, l := range labels {
		list[i] = l
	}
	return Sizes{newJSONColumn(list)}
}

// Values returns the declared size labels.
func (s Sizes) Values() []string {
	return NormalizeSizes(s.value)
}

// Declared reports whether the item requires a size selection.
func (s Sizes) Declared() bool {
	return len(s.Values()) > 0
}
