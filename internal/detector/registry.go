package detector

// Registry maps files to detectors. It holds an ordered list and
// resolves a file to the first registered detector whose CanAnalyze
// returns true; registration order therefore decides ties, so more
// specific detectors (e.g. TypeScript) must be registered before more
// general ones (e.g. JavaScript). The registry is owned by the
// orchestrator for the lifetime of one run and frozen after wiring,
// making concurrent reads safe.
type Registry struct {
	detectors []Detector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a detector. First registered, first tried.
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// DetectorFor returns the first detector that can analyze the path.
func (r *Registry) DetectorFor(path string) (Detector, bool) {
	for _, d := range r.detectors {
		if d.CanAnalyze(path) {
			return d, true
		}
	}
	return nil, false
}

// SupportedLanguages returns the distinct language ids across all
// registered detectors, in registration order.
func (r *Registry) SupportedLanguages() []string {
	seen := make(map[string]bool)
	var languages []string
	for _, d := range r.detectors {
		if !seen[d.Language()] {
			seen[d.Language()] = true
			languages = append(languages, d.Language())
		}
	}
	return languages
}
