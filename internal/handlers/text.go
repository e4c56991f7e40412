package handlers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/emwin"
	"github.com/goesrx/goesrx/internal/lrit"
)

// TextHandler writes text bulletins (filetype 2) into the output root
// under their annotation names. NOAA-compressed bulletins arrive as ZIP
// archives and are extracted in place. EMWIN bulletins additionally get a
// refreshed latest-<legacy name> symlink so tailing scripts have a stable
// path.
type TextHandler struct {
	root string
	log  *zap.SugaredLogger
}

func NewTextHandler(root string, log *zap.SugaredLogger) *TextHandler {
	return &TextHandler{root: root, log: log}
}

func (h *TextHandler) Handle(l *lrit.LRIT) error {
	if l.Headers.Primary.FileTypeCode != 2 {
		return ErrSkipped
	}

	compressed := l.Headers.NOAA != nil && l.Headers.NOAA.Compression != 0
	if compressed {
		return h.extractArchive(l)
	}

	ann := l.Headers.Annotation
	if ann == nil {
		return &MissingHeaderError{Header: "annotation"}
	}
	path := filepath.Join(h.root, filepath.Base(ann.Text))
	if err := os.WriteFile(path, l.Data, 0o644); err != nil {
		return err
	}
	h.log.Infof("wrote %s", ann.Text)
	h.refreshLatest(l.VCID, filepath.Base(ann.Text), path)
	return nil
}

func (h *TextHandler) extractArchive(l *lrit.LRIT) error {
	r, err := zip.NewReader(bytes.NewReader(l.Data), int64(len(l.Data)))
	if err != nil {
		return &ParseError{Reason: fmt.Sprintf("zip open: %v", err)}
	}
	for _, f := range r.File {
		name := filepath.Base(f.Name)
		src, err := f.Open()
		if err != nil {
			h.log.Warnf("zip member %s: %v", f.Name, err)
			continue
		}
		path := filepath.Join(h.root, name)
		dst, err := os.Create(path)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
		h.log.Infof("wrote %s", name)
		h.refreshLatest(l.VCID, name, path)
	}
	return nil
}

// refreshLatest points latest-<legacy name> at the newest bulletin of an
// EMWIN product.
func (h *TextHandler) refreshLatest(vcid uint8, name, path string) {
	if !emwin.IsEmwinVCID(vcid) {
		return
	}
	if name == "" || (name[0] != 'A' && name[0] != 'Z') {
		return
	}
	parsed, err := emwin.Parse(trimExt(name))
	if err != nil {
		return
	}
	link := filepath.Join(h.root, "latest-"+parsed.LegacyFilename)
	_ = os.Remove(link)
	if err := os.Symlink(path, link); err != nil {
		h.log.Warnf("symlink %s: %v", link, err)
	}
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
