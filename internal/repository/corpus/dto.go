package corpus

import (
	"github.com/kailas-cloud/policysearch/internal/domain/policy"
)

// Record is a policy as supplied by the corpus collaborator, before validation.
type Record struct {
	ID           string                 `json:"id" yaml:"id"`
	RegistryPath string                 `json:"registry_path" yaml:"registry_path"`
	Texts        map[string]policy.Text `json:"texts" yaml:"texts"`
}

// toPolicy validates the record into a domain Policy.
func (r Record) toPolicy() (policy.Policy, error) {
	return policy.New(r.ID, r.RegistryPath, r.Texts)
}

// RecordFromPolicy converts a domain Policy back to its wire form.
func RecordFromPolicy(p policy.Policy) Record {
	texts := make(map[string]policy.Text, len(p.Cultures()))
	for _, c := range p.Cultures() {
		t, _ := p.Text(c)
		texts[c] = t
	}
	return Record{ID: p.ID(), RegistryPath: p.RegistryPath(), Texts: texts}
}
