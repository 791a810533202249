package domain

import (
	"bytes"
	"encoding/json"
)

type ImageKind int

const (
	ImagesAbsent ImageKind = iota
	ImagesList
	ImagesText
	ImagesOther
)

// ImageField is the decoded form of the backend's images value, which may be
// missing, an array, a string holding a JSON array, or anything else.
type ImageField struct {
	Kind ImageKind
	List []string
	Text string
}

func ImageList(urls ...string) ImageField { return ImageField{Kind: ImagesList, List: urls} }
func ImageText(s string) ImageField       { return ImageField{Kind: ImagesText, Text: s} }

func (f *ImageField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = ImageField{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			f.Kind = ImagesOther
			return nil
		}
		f.Kind, f.List = ImagesList, list
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.Kind, f.Text = ImagesText, s
	default:
		f.Kind = ImagesOther
	}
	return nil
}
