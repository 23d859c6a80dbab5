package encoder

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"expose/pkg/metrics"
	"expose/pkg/models"
)

// ReadmeName is the license note stored next to the file in every archive
const ReadmeName = "readme.txt"

// ArchivePath is the download archive of an item
func ArchivePath(outDir, slug string) string {
	return filepath.Join(outDir, slug+".zip")
}

// writeArchive zips the source file, or the compiled video of a sequence,
// together with the readme. An existing archive is left alone.
func (e *Encoder) writeArchive(item *models.GalleryItem, outDir string) error {
	out := ArchivePath(outDir, item.Slug)
	if Complete(out) {
		metrics.EncodesTotal.WithLabelValues("archive", metrics.StatusSkipped).Inc()
		return nil
	}

	src := item.SourceFile
	if item.Kind == models.MediaImageSequence {
		src = e.scratch.Path(sequenceName)
	}
	if !Complete(src) {
		return fmt.Errorf("nothing to archive for %s", item.URL())
	}

	e.scratch.Begin(out)
	defer e.scratch.Done()

	if err := writeZip(out, src, e.cfg.DownloadReadme); err != nil {
		_ = os.Remove(out)
		metrics.EncodesTotal.WithLabelValues("archive", metrics.StatusFailed).Inc()
		return err
	}
	metrics.EncodesTotal.WithLabelValues("archive", metrics.StatusDone).Inc()

	if info, err := os.Stat(out); err == nil {
		e.logger.Debug("archive written", "file", out, "size", humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

func writeZip(out, src, readme string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(f)

	if err := addFile(zw, src); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	w, err := zw.Create(ReadmeName)
	if err == nil {
		_, err = io.WriteString(w, readme)
	}
	if err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("write readme: %w", err)
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finish archive: %w", err)
	}
	return f.Close()
}

func addFile(zw *zip.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("archive header: %w", err)
	}
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("archive entry: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("archive %s: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
