package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/emwin"
	"github.com/goesrx/goesrx/internal/lrit"
)

// DebugHandler dumps every file's parsed header set (and, for EMWIN
// products, the decoded filename) next to the product as <name>.debug.
type DebugHandler struct {
	root string
	log  *zap.SugaredLogger
}

func NewDebugHandler(root string, log *zap.SugaredLogger) *DebugHandler {
	return &DebugHandler{root: root, log: log}
}

func (h *DebugHandler) Handle(l *lrit.LRIT) error {
	ann := l.Headers.Annotation
	if ann == nil {
		return &MissingHeaderError{Header: "annotation"}
	}
	name := filepath.Base(ann.Text)
	f, err := os.Create(filepath.Join(h.root, name+".debug"))
	if err != nil {
		return err
	}
	defer f.Close()

	hs := l.Headers
	fmt.Fprintf(f, "VCID: %d\n", l.VCID)
	fmt.Fprintf(f, "primary: %+v\n", hs.Primary)
	if hs.ImageStructure != nil {
		fmt.Fprintf(f, "image structure: %+v\n", *hs.ImageStructure)
	}
	if hs.ImageNav != nil {
		fmt.Fprintf(f, "image navigation: %+v\n", *hs.ImageNav)
	}
	if hs.ImageDataFunc != nil {
		fmt.Fprintf(f, "image data function: %d bytes\n", len(hs.ImageDataFunc.Data))
	}
	if hs.ImageSegment != nil {
		fmt.Fprintf(f, "image segment: %+v\n", *hs.ImageSegment)
	}
	fmt.Fprintf(f, "annotation: %+v\n", *ann)
	if hs.Timestamp != nil {
		fmt.Fprintf(f, "timestamp: %s\n", hs.Timestamp.Time().Format("2006-01-02T15:04:05.000Z"))
	}
	if hs.AncillaryText != nil {
		fmt.Fprintf(f, "ancillary text: %+v\n", *hs.AncillaryText)
	}
	if hs.NOAA != nil {
		fmt.Fprintf(f, "NOAA: %+v\n", *hs.NOAA)
	}
	if hs.HeaderStruct != nil {
		fmt.Fprintf(f, "header structure: %+v\n", *hs.HeaderStruct)
	}
	if hs.Rice != nil {
		fmt.Fprintf(f, "rice: %+v\n", *hs.Rice)
	}

	if emwin.IsEmwinVCID(l.VCID) && len(name) > 0 && (name[0] == 'A' || name[0] == 'Z') {
		if parsed, err := emwin.Parse(trimExt(name)); err == nil {
			fmt.Fprintf(f, "emwin: %+v\n", parsed)
		}
	}
	return nil
}
