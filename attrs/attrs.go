// Package attrs reads and writes typed values of a suyashkumar/dicom dataset.
//
// Integer attributes arrive as []int for binary VRs (US, SS, UL, SL) and as
// []string for IS, so the readers accept both.
package attrs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Find returns the element with tag t, or nil.
func Find(ds *dicom.Dataset, t tag.Tag) *dicom.Element {
	if ds == nil {
		return nil
	}
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return nil
	}
	return elem
}

// Has reports whether ds holds tag t.
func Has(ds *dicom.Dataset, t tag.Tag) bool {
	return Find(ds, t) != nil
}

// Int returns the first value of t as an integer.
func Int(ds *dicom.Dataset, t tag.Tag) (int, bool) {
	elem := Find(ds, t)
	if elem == nil || elem.Value == nil {
		return 0, false
	}
	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0], true
		}
	case []string:
		if len(v) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(v[0]))
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// IntOr returns the first value of t, or def when absent.
func IntOr(ds *dicom.Dataset, t tag.Tag, def int) int {
	if n, ok := Int(ds, t); ok {
		return n
	}
	return def
}

// Strings returns all string values of t with padding trimmed.
func Strings(ds *dicom.Dataset, t tag.Tag) []string {
	elem := Find(ds, t)
	if elem == nil || elem.Value == nil {
		return nil
	}
	v, ok := elem.Value.GetValue().([]string)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, s := range v {
		out = append(out, strings.TrimRight(strings.TrimSpace(s), "\x00"))
	}
	return out
}

// String returns the first string value of t.
func String(ds *dicom.Dataset, t tag.Tag) (string, bool) {
	v := Strings(ds, t)
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// StringOr returns the first string value of t, or def when absent or empty.
func StringOr(ds *dicom.Dataset, t tag.Tag, def string) string {
	if s, ok := String(ds, t); ok && s != "" {
		return s
	}
	return def
}

// Floats parses the decimal string values of t. Unparseable values are skipped.
func Floats(ds *dicom.Dataset, t tag.Tag) []float64 {
	var out []float64
	for _, s := range Strings(ds, t) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Items returns the element lists of the items of sequence t.
func Items(ds *dicom.Dataset, t tag.Tag) [][]*dicom.Element {
	elem := Find(ds, t)
	if elem == nil || elem.Value == nil {
		return nil
	}
	seq, ok := elem.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil
	}
	out := make([][]*dicom.Element, 0, len(seq))
	for _, item := range seq {
		if elems, ok := item.GetValue().([]*dicom.Element); ok {
			out = append(out, elems)
		}
	}
	return out
}

// Set creates or replaces tag t with value, keeping elements in tag order.
func Set(ds *dicom.Dataset, t tag.Tag, value any) error {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		return err
	}
	Put(ds, elem)
	return nil
}

// Put inserts elem, replacing any element with the same tag.
func Put(ds *dicom.Dataset, elem *dicom.Element) {
	for i, e := range ds.Elements {
		if e.Tag == elem.Tag {
			ds.Elements[i] = elem
			return
		}
	}
	i := sort.Search(len(ds.Elements), func(i int) bool {
		return !Less(ds.Elements[i].Tag, elem.Tag)
	})
	ds.Elements = append(ds.Elements, nil)
	copy(ds.Elements[i+1:], ds.Elements[i:])
	ds.Elements[i] = elem
}

// Remove deletes tag t and reports whether it was present.
func Remove(ds *dicom.Dataset, t tag.Tag) bool {
	for i, e := range ds.Elements {
		if e.Tag == t {
			ds.Elements = append(ds.Elements[:i], ds.Elements[i+1:]...)
			return true
		}
	}
	return false
}

// Less orders tags by group, then element.
func Less(a, b tag.Tag) bool {
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	return a.Element < b.Element
}

// Clone returns a shallow copy of ds whose element slice can be edited
// without affecting the original.
func Clone(ds *dicom.Dataset) *dicom.Dataset {
	if ds == nil {
		return &dicom.Dataset{}
	}
	elems := make([]*dicom.Element, len(ds.Elements))
	copy(elems, ds.Elements)
	return &dicom.Dataset{Elements: elems}
}

// SetVR creates or replaces tag t with an explicit VR. It covers tags the
// dictionary does not resolve, such as repeating overlay groups.
func SetVR(ds *dicom.Dataset, t tag.Tag, vr string, value any) error {
	v, err := dicom.NewValue(value)
	if err != nil {
		return err
	}
	Put(ds, &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, vr),
		RawValueRepresentation: vr,
		Value:                  v,
	})
	return nil
}
