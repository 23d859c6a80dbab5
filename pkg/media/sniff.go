package media

import (
	"io"
	"net/http"
	"os"
	"strings"
)

// SniffVideo reports whether the leading bytes of a file look like a video
// container. Used for files whose extension is not recognised.
func SniffVideo(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(buf[:n]), "video/")
}
