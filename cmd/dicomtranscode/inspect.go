package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cocosip/go-dicom-imageio/adapter"
	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

func runInspect(args []string) error {
	fs := newFlagSet("inspect")
	in := fs.String("in", "", "Input DICOM file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}
	return inspect(os.Stdout, *in)
}

func inspect(w io.Writer, path string) error {
	ds, src, err := adapter.ReadFile(path)
	if err != nil {
		return err
	}
	desc, err := imagedesc.New(ds)
	if err != nil {
		return err
	}
	ts := adapter.TransferSyntaxOf(ds)
	fmt.Fprintf(w, "Transfer syntax: %s (%s)\n", transfersyntax.Name(ts), ts)
	printDescriptor(w, desc)

	fsrc, ok := src.(*adapter.FileSource)
	if !ok {
		if src == nil {
			fmt.Fprintln(w, "Pixel data: none")
		} else {
			fmt.Fprintln(w, "Pixel data: in memory")
		}
		return nil
	}
	loc := fsrc.Location()
	fmt.Fprintf(w, "Pixel data: encapsulated=%v fragments=%d\n", loc.Encapsulated, len(loc.Fragments))
	for i := 0; i < desc.Frames(); i++ {
		segs, err := fsrc.Segments(i, desc.Frames(), desc)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		pos, lengths := segs.Positions(), segs.Lengths()
		fmt.Fprintf(w, "  frame %d: %d bytes in %d segment(s)\n", i, segs.TotalLength(), segs.SegmentCount())
		for j := range pos {
			fmt.Fprintf(w, "    @%d +%d\n", pos[j], lengths[j])
		}
		if loc.Encapsulated {
			continue
		}
		frame, err := fsrc.Frame(i, desc.Frames(), desc)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		st, err := desc.UpdateMinMax(i, frame, fsrc.Order())
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		fmt.Fprintf(w, "    min %g max %g mean %.2f stddev %.2f\n", st.Min, st.Max, st.Mean, st.StdDev)
	}
	return nil
}

func printDescriptor(w io.Writer, d *imagedesc.Descriptor) {
	fmt.Fprintf(w, "SOP class: %s\n", d.SOPClassUID())
	fmt.Fprintf(w, "Modality: %s\n", d.Modality())
	fmt.Fprintf(w, "Size: %dx%d, %d frame(s)\n", d.Columns(), d.Rows(), d.Frames())
	fmt.Fprintf(w, "Photometric: %s, %d sample(s), planar %d\n", d.Photometric(), d.SamplesPerPixel(), d.PlanarConfiguration())
	fmt.Fprintf(w, "Bits: allocated %d, stored %d, high bit %d, signed %v\n",
		d.BitsAllocated(), d.BitsStored(), d.HighBit(), d.IsSigned())
	fmt.Fprintf(w, "Frame length: %d\n", d.FrameLength())
	if ov := d.EmbeddedOverlays(); len(ov) > 0 {
		fmt.Fprintf(w, "Embedded overlays: %v\n", ov)
	}
}
