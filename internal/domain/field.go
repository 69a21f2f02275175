package domain

import "strings"

// ResearchField is a coarse subject bucket assigned from title and abstract keywords.
type ResearchField int

const (
	FieldOther ResearchField = iota
	FieldPhotonics
	FieldMaterialsScience
	FieldNanotechnology
	FieldElectronics
	FieldBiotechnology
	FieldQuantumPhysics
	FieldNeuroscience
	FieldArtificialIntelligence
	FieldMachineLearning
	FieldChemistry
	FieldPhysics
	FieldBiology
)

var fieldLabels = map[ResearchField]string{
	FieldOther:                  "Other",
	FieldPhotonics:              "Photonics",
	FieldMaterialsScience:       "Materials Science",
	FieldNanotechnology:         "Nanotechnology",
	FieldElectronics:            "Electronics",
	FieldBiotechnology:          "Biotechnology",
	FieldQuantumPhysics:         "Quantum Physics",
	FieldNeuroscience:           "Neuroscience",
	FieldArtificialIntelligence: "Artificial Intelligence",
	FieldMachineLearning:        "Machine Learning",
	FieldChemistry:              "Chemistry",
	FieldPhysics:                "Physics",
	FieldBiology:                "Biology",
}

func (f ResearchField) String() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return fieldLabels[FieldOther]
}

func (f ResearchField) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *ResearchField) UnmarshalText(b []byte) error {
	text := strings.TrimSpace(string(b))
	for field, label := range fieldLabels {
		if strings.EqualFold(label, text) {
			*f = field
			return nil
		}
	}
	*f = FieldOther
	return nil
}

// fieldKeywords is ordered; on equal scores the earlier field wins.
var fieldKeywords = []struct {
	field    ResearchField
	keywords []string
}{
	{FieldPhotonics, []string{"photonics", "optics", "laser", "optical", "light", "photon", "quantum optics"}},
	{FieldMaterialsScience, []string{"materials", "material science", "nanomaterials", "quantum materials", "crystal"}},
	{FieldNanotechnology, []string{"nanotechnology", "nano", "nanoparticle", "quantum dot", "nanostructure"}},
	{FieldElectronics, []string{"electronics", "semiconductor", "transistor", "integrated circuit", "quantum computing"}},
	{FieldBiotechnology, []string{"biotechnology", "bio", "genetics", "crispr", "protein", "dna", "cell"}},
	{FieldQuantumPhysics, []string{"quantum", "quantum physics", "quantum mechanics", "entanglement"}},
	{FieldNeuroscience, []string{"neuroscience", "neural", "brain", "neuron", "cognitive"}},
	{FieldArtificialIntelligence, []string{"artificial intelligence", "ai", "machine learning", "deep learning"}},
	{FieldMachineLearning, []string{"machine learning", "ml", "neural network", "algorithm", "data science"}},
	{FieldChemistry, []string{"chemistry", "chemical", "molecule", "catalyst", "reaction"}},
	{FieldPhysics, []string{"physics", "physical", "mechanics", "thermodynamics"}},
	{FieldBiology, []string{"biology", "biological", "organism", "evolution", "ecology"}},
}

// ClassifyField scores every field by keyword hits in title and abstract.
func ClassifyField(title, abstract string) ResearchField {
	text := strings.ToLower(title + " " + abstract)

	best, bestScore := FieldOther, 0
	for _, entry := range fieldKeywords {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = entry.field, score
		}
	}
	return best
}
