package handlers

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/lrit"
)

// How many distinct in-progress images to hold segments for. Segments of
// one image should not interleave with another's, but it has been seen on
// air, so keep a few.
const segmentCacheSize = 3

// ImageHandler writes imagery (filetype 0). Unsegmented products are
// written immediately; segmented products are collected per image id and
// composited once all segments arrived.
type ImageHandler struct {
	root     string
	log      *zap.SugaredLogger
	segments *lru.Cache[uint16, []*lrit.LRIT]
}

func NewImageHandler(root string, log *zap.SugaredLogger) (*ImageHandler, error) {
	cache, err := lru.New[uint16, []*lrit.LRIT](segmentCacheSize)
	if err != nil {
		return nil, err
	}
	return &ImageHandler{root: root, log: log, segments: cache}, nil
}

func (h *ImageHandler) Handle(l *lrit.LRIT) error {
	if l.Headers.Primary.FileTypeCode != 0 {
		return ErrSkipped
	}
	ihs := l.Headers.ImageStructure
	if ihs == nil {
		return &MissingHeaderError{Header: "image structure"}
	}
	ann := l.Headers.Annotation
	if ann == nil {
		return &MissingHeaderError{Header: "annotation"}
	}

	if !isSegmented(l) {
		return h.writeWhole(l, ihs, ann.Text)
	}

	seg := l.Headers.ImageSegment
	if seg == nil {
		return &MissingHeaderError{Header: "image segment identification"}
	}

	if have, ok := h.segments.Get(seg.ImageID); ok {
		have = append(have, l)
		if len(have) >= int(seg.MaxSegment) {
			h.segments.Remove(seg.ImageID)
			return h.writeFromSegments(have)
		}
		h.segments.Add(seg.ImageID, have)
		return nil
	}
	h.segments.Add(seg.ImageID, []*lrit.LRIT{l})
	return nil
}

// isSegmented checks the ancillary text's Segmented=yes marker.
func isSegmented(l *lrit.LRIT) bool {
	if l.Headers.AncillaryText == nil {
		return false
	}
	return l.Headers.AncillaryText.Pairs()["Segmented"] == "yes"
}

func (h *ImageHandler) writeWhole(l *lrit.LRIT, ihs *lrit.ImageStructureHeader, name string) error {
	if l.Headers.NOAA != nil && l.Headers.NOAA.Compression == 5 {
		// Already a GIF; dump verbatim.
		path := filepath.Join(h.root, filepath.Base(name)+".gif")
		if err := os.WriteFile(path, l.Data, 0o644); err != nil {
			return err
		}
		h.log.Infof("wrote %s", path)
		return nil
	}
	if ihs.BitsPerPixel != 8 {
		return &ParseError{Reason: fmt.Sprintf("unsupported %d bpp image", ihs.BitsPerPixel)}
	}

	// The body is occasionally a few bytes short of a full raster; pad
	// rather than drop the product.
	pixels := make([]byte, int(ihs.Columns)*int(ihs.Lines))
	copy(pixels, l.Data)

	return h.encode(pixels, int(ihs.Columns), int(ihs.Lines), filepath.Base(name))
}

func (h *ImageHandler) writeFromSegments(segs []*lrit.LRIT) error {
	if len(segs) == 0 {
		return nil
	}
	first := segs[0].Headers
	ihs := first.ImageStructure
	seg := first.ImageSegment
	ann := first.Annotation
	if ihs == nil || seg == nil || ann == nil {
		return &MissingHeaderError{Header: "image composition"}
	}
	if ihs.BitsPerPixel != 8 {
		return &ParseError{Reason: fmt.Sprintf("unsupported %d bpp image", ihs.BitsPerPixel)}
	}

	pixels := make([]byte, int(seg.MaxColumn)*int(seg.MaxRow))
	for _, l := range segs {
		s := l.Headers.ImageSegment
		if s == nil {
			continue
		}
		start := int(s.MaxColumn) * int(s.StartLine)
		end := start + len(l.Data)
		if start < 0 || end > len(pixels) {
			h.log.Warnf("segment %d of image %d outside raster (line %d), skipping",
				s.SegmentSeq, s.ImageID, s.StartLine)
			continue
		}
		copy(pixels[start:end], l.Data)
	}

	h.log.Infof("compositing %d of %d segments for %s", len(segs), seg.MaxSegment, ann.Text)
	return h.encode(pixels, int(seg.MaxColumn), int(seg.MaxRow), filepath.Base(ann.Text))
}

func (h *ImageHandler) encode(pixels []byte, w, ht int, name string) error {
	img := &image.Gray{Pix: pixels, Stride: w, Rect: image.Rect(0, 0, w, ht)}
	path := filepath.Join(h.root, name+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		return err
	}
	h.log.Infof("wrote %s", path)
	return nil
}
