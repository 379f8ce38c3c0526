package result

// Hit is a single policy search hit (immutable value object).
type Hit struct {
	uniqueID     string
	displayName  string
	registryPath string
	score        float64
}

// New creates a search hit.
func New(uniqueID, displayName, registryPath string, score float64) Hit {
	return Hit{
		uniqueID:     uniqueID,
		displayName:  displayName,
		registryPath: registryPath,
		score:        score,
	}
}

// UniqueID returns the policy identifier.
func (h Hit) UniqueID() string { return h.uniqueID }

// DisplayName returns the localized display name the hit was resolved with.
func (h Hit) DisplayName() string { return h.displayName }

// RegistryPath returns the registry key (and value name) the policy affects.
func (h Hit) RegistryPath() string { return h.registryPath }

// Score returns the match score.
func (h Hit) Score() float64 { return h.score }

// WithScore returns a copy of the hit with a different score.
func (h Hit) WithScore(score float64) Hit {
	h.score = score
	return h
}
