package media

import (
	"path/filepath"
	"strings"
)

// ImageExtensions are the still image formats taken as gallery images
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// VideoExtensions are the container extensions treated as video without sniffing
var VideoExtensions = map[string]bool{
	".3g2": true, ".3gp": true, ".3gp2": true, ".asf": true, ".avi": true,
	".dvr-ms": true, ".exr": true, ".ffindex": true, ".ffpreset": true,
	".flv": true, ".gxf": true, ".h261": true, ".h263": true, ".h264": true,
	".h265": true, ".ifv": true, ".m2t": true, ".m2ts": true, ".mts": true,
	".m4v": true, ".mkv": true, ".mod": true, ".mov": true, ".mp4": true,
	".mpg": true, ".mxf": true, ".tod": true, ".vob": true, ".webm": true,
	".wmv": true, ".y4m": true,
}

// FormatExtensions maps a configured video format to its container extension
var FormatExtensions = map[string]string{
	"h264": "mp4",
	"h265": "mp4",
	"vp9":  "webm",
	"vp8":  "webm",
	"ogv":  "ogv",
}

// FormatExtension returns the container extension for a video format,
// defaulting to mp4 for formats without a mapping
func FormatExtension(format string) string {
	if ext, ok := FormatExtensions[format]; ok {
		return ext
	}
	return "mp4"
}

// IsImage reports whether the file name has a gallery image extension
func IsImage(name string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsVideo reports whether the file name has a known video extension
func IsVideo(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}
