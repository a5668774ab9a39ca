package adapter

import (
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/dicomuid"
	"github.com/cocosip/go-dicom-imageio/mask"
)

// Editor rewrites the attributes of an object before it is transcoded.
type Editor interface {
	Edit(ctx *EditContext, ds *dicom.Dataset) error
}

// EditorFunc adapts a function to Editor.
type EditorFunc func(ctx *EditContext, ds *dicom.Dataset) error

// Edit implements Editor.
func (f EditorFunc) Edit(ctx *EditContext, ds *dicom.Dataset) error { return f(ctx, ds) }

// DefaultUIDTags are the UIDs ReplaceUIDs rewrites when given no tags.
var DefaultUIDTags = []tag.Tag{
	tag.StudyInstanceUID,
	tag.SeriesInstanceUID,
	tag.SOPInstanceUID,
	tag.FrameOfReferenceUID,
}

// EditContext is handed to an Editor.
type EditContext struct {
	OriginalTransferSyntax string
	CallingAETitle         string
	CalledAETitle          string
	// Mask is applied to the pixel data after editing. Editors may set or
	// extend it.
	Mask *mask.Area
	// Salt makes replaced UIDs differ between otherwise equal contexts.
	Salt string
	// Replaced maps each replaced UID to its replacement.
	Replaced map[string]string
}

// ReplaceUIDs gives each UID in tags a new value derived from the old one,
// so objects of one study edited with the same salt keep their references.
func (c *EditContext) ReplaceUIDs(ds *dicom.Dataset, tags ...tag.Tag) error {
	if len(tags) == 0 {
		tags = DefaultUIDTags
	}
	if c.Replaced == nil {
		c.Replaced = make(map[string]string)
	}
	for _, t := range tags {
		old, ok := attrs.String(ds, t)
		if !ok || old == "" {
			continue
		}
		uid, ok := c.Replaced[old]
		if !ok {
			uid = dicomuid.Derive(c.Salt + old)
			c.Replaced[old] = uid
		}
		if err := attrs.Set(ds, t, []string{uid}); err != nil {
			return err
		}
	}
	return nil
}
