// Package media wraps the external tools a gallery build delegates to:
// ImageMagick for image probing, resizing and palettes, ffmpeg/ffprobe for
// frame extraction, dimension probing and encoding. Every invocation goes
// through a Runner so callers and tests can substitute the process layer.
package media
