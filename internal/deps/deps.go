package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"subgen/internal/config"
)

// Requirement defines an external binary subgen relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig lists the binaries the given configuration will invoke. The
// transcoder appears only when the cached download is bypassed with an
// explicit command.
func ForConfig(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "Recognizer",
			Command:     cfg.Recognizer.Command,
			Description: "whisper.cpp CLI used for speech recognition",
		},
	}
	if cfg.Transcoder.Command != "" {
		reqs = append(reqs, Requirement{
			Name:        "Transcoder",
			Command:     cfg.Transcoder.Command,
			Description: "ffmpeg override configured instead of the cached build",
		})
	}
	return reqs
}

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
