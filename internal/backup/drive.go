package backup

import (
	"path/filepath"
	"strings"
)

var (
	driveLetters    = []string{"G", "H", "D", "E", "F", "I", "J", "K", "L"}
	driveRoots      = []string{"Mi unidad", "My Drive"}
	windowsHomeDirs = []string{
		`Google Drive\Mi unidad`,
		`Google Drive\My Drive`,
		`Google Drive`,
		`GoogleDrive\Mi unidad`,
		`GoogleDrive\My Drive`,
	}
)

// join builds paths for the probed platform, which is not always the one the
// binary runs on in tests.
func (s *Service) join(elem ...string) string {
	if s.goos != "windows" {
		return filepath.Join(elem...)
	}
	parts := make([]string, 0, len(elem))
	for i, e := range elem {
		if i > 0 {
			e = strings.TrimLeft(e, `\`)
		}
		if i < len(elem)-1 {
			e = strings.TrimRight(e, `\`)
		}
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, `\`)
}

// DetectDrive finds the local folder of a desktop cloud-drive client.
func (s *Service) DetectDrive() (string, bool) {
	switch s.goos {
	case "windows":
		return s.detectWindows()
	case "darwin":
		return s.detectMac()
	}
	return "", false
}

func (s *Service) detectWindows() (string, bool) {
	for _, letter := range driveLetters {
		root := letter + `:\`
		for _, name := range driveRoots {
			if p := root + name; s.exists(p) {
				return p, true
			}
		}
		// A bare drive root only counts when it carries the sync client's markers.
		if s.exists(root) && (s.exists(root+".shortcut-targets-by-id") || s.exists(root+"Shared drives")) {
			return root, true
		}
	}

	home, err := s.home()
	if err != nil {
		return "", false
	}
	for _, rel := range windowsHomeDirs {
		if p := s.join(home, rel); s.exists(p) {
			return p, true
		}
	}
	return "", false
}

func (s *Service) detectMac() (string, bool) {
	home, err := s.home()
	if err != nil {
		return "", false
	}
	cloud := filepath.Join(home, "Library", "CloudStorage")
	entries, err := s.readDir(cloud)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "GoogleDrive-") {
			continue
		}
		if p := filepath.Join(cloud, e.Name(), "Mi unidad"); s.exists(p) {
			return p, true
		}
	}
	return "", false
}

// Diagnostics reports every path the detection looks at.
func (s *Service) Diagnostics() []ProbedPath {
	var out []ProbedPath
	probe := func(p string) { out = append(out, ProbedPath{Path: p, Exists: s.exists(p)}) }

	home, _ := s.home()
	switch s.goos {
	case "windows":
		for _, letter := range driveLetters {
			for _, name := range driveRoots {
				probe(letter + `:\` + name)
			}
		}
		if home != "" {
			for _, rel := range windowsHomeDirs {
				probe(s.join(home, rel))
			}
		}
	case "darwin":
		if home != "" {
			probe(filepath.Join(home, "Library", "CloudStorage"))
		}
	}
	if s.cfg.Dir != "" {
		probe(s.cfg.Dir)
	}
	return out
}
