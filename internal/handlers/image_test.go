package handlers

import (
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/goesrx/goesrx/internal/lrit"
)

func imageLRIT(name string, cols, lines uint16, pixels []byte) *lrit.LRIT {
	return &lrit.LRIT{
		VCID: 13,
		Headers: lrit.Headers{
			Primary: lrit.PrimaryHeader{FileTypeCode: 0},
			ImageStructure: &lrit.ImageStructureHeader{
				BitsPerPixel: 8, Columns: cols, Lines: lines,
			},
			Annotation: &lrit.AnnotationHeader{Text: name},
		},
		Data: pixels,
	}
}

func TestImageHandlerWritesUnsegmented(t *testing.T) {
	root := t.TempDir()
	h, err := NewImageHandler(root, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	pixels := make([]byte, 64*32)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	if err := h.Handle(imageLRIT("FULLDISK", 64, 32, pixels)); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(root, "FULLDISK.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("image is %dx%d, want 64x32", cfg.Width, cfg.Height)
	}
}

func TestImageHandlerPadsShortBody(t *testing.T) {
	root := t.TempDir()
	h, err := NewImageHandler(root, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	// Ten pixels short of a full raster; the handler pads rather than
	// dropping the product.
	if err := h.Handle(imageLRIT("SHORT", 16, 16, make([]byte, 16*16-10))); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "SHORT.jpg")); err != nil {
		t.Fatal(err)
	}
}

func TestImageHandlerGIFPassthrough(t *testing.T) {
	root := t.TempDir()
	h, err := NewImageHandler(root, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	l := imageLRIT("ANIM", 10, 10, []byte("GIF89a...."))
	l.Headers.NOAA = &lrit.NOAAHeader{Compression: 5}
	if err := h.Handle(l); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(root, "ANIM.gif"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "GIF89a...." {
		t.Errorf("content = %q", got)
	}
}

func segmentLRIT(id, seq, startLine, maxSeg, maxCol, maxRow uint16, pixels []byte) *lrit.LRIT {
	l := imageLRIT("SEGMENTED", maxCol, maxRow, pixels)
	l.Headers.AncillaryText = &lrit.AncillaryTextHeader{Text: "Segmented=yes"}
	l.Headers.ImageSegment = &lrit.ImageSegmentHeader{
		ImageID: id, SegmentSeq: seq, StartLine: startLine,
		MaxSegment: maxSeg, MaxColumn: maxCol, MaxRow: maxRow,
	}
	return l
}

func TestImageHandlerCompositesSegments(t *testing.T) {
	root := t.TempDir()
	h, err := NewImageHandler(root, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	// A 8x4 image in two 8x2 segments.
	top := make([]byte, 16)
	bottom := make([]byte, 16)
	for i := range top {
		top[i] = 0x20
		bottom[i] = 0xE0
	}

	if err := h.Handle(segmentLRIT(9000, 0, 0, 2, 8, 4, top)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "SEGMENTED.jpg")); err == nil {
		t.Fatal("image written before all segments arrived")
	}
	if err := h.Handle(segmentLRIT(9000, 1, 2, 2, 8, 4, bottom)); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(root, "SEGMENTED.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 8 || cfg.Height != 4 {
		t.Errorf("composited image is %dx%d, want 8x4", cfg.Width, cfg.Height)
	}
}

func TestImageHandlerRejectsDeepImages(t *testing.T) {
	h, err := NewImageHandler(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	l := imageLRIT("DEEP", 4, 4, make([]byte, 32))
	l.Headers.ImageStructure.BitsPerPixel = 16
	if _, ok := h.Handle(l).(*ParseError); !ok {
		t.Fatal("want ParseError for 16 bpp")
	}
}
