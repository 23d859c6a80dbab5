package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrMissingRequired is returned when a mandatory external tool is absent
var ErrMissingRequired = errors.New("required dependency missing")

// Requirement defines an external tool the build relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Tools used by the build. ImageMagick is mandatory; ffmpeg and ffprobe
// together enable video support.
var (
	Convert  = Requirement{Name: "ImageMagick convert", Command: "convert", Description: "image resize and palette extraction"}
	Identify = Requirement{Name: "ImageMagick identify", Command: "identify", Description: "image dimension and orientation probe"}
	FFmpeg   = Requirement{Name: "FFmpeg", Command: "ffmpeg", Description: "video frame extraction and encoding", Optional: true}
	FFprobe  = Requirement{Name: "FFprobe", Command: "ffprobe", Description: "video dimension probe", Optional: true}
)

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Report summarises a dependency check for the build
type Report struct {
	Statuses     []Status
	VideoEnabled bool
}

// Check verifies the tools a build needs. A missing mandatory tool yields an
// error wrapping ErrMissingRequired; missing optional tools only disable
// video support.
func Check() (Report, error) {
	statuses := CheckBinaries([]Requirement{Convert, Identify, FFmpeg, FFprobe})
	report := Report{Statuses: statuses, VideoEnabled: true}

	var missing []string
	for _, status := range statuses {
		if status.Available {
			continue
		}
		if status.Optional {
			report.VideoEnabled = false
			continue
		}
		missing = append(missing, status.Name)
	}
	if len(missing) > 0 {
		return report, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return report, nil
}
