package typeahead

import "sort"

const (
	VocabSymptoms    = "symptoms"
	VocabConditions  = "conditions"
	VocabMedications = "medications"
)

var symptoms = []string{
	"Headache", "Fever", "Cough", "Sore Throat", "Runny Nose", "Fatigue",
	"Nausea", "Vomiting", "Diarrhea", "Chest Pain", "Shortness of Breath",
	"Dizziness", "Abdominal Pain", "Back Pain", "Joint Pain", "Muscle Pain",
	"Rash", "Itching", "Swelling", "Blurred Vision", "Earache", "Loss of Appetite",
	"Weight Loss", "Restlessness", "Lethargy",
}

var conditions = []string{
	"High Blood Pressure", "Diabetes", "Asthma", "Depression", "Anxiety",
	"Insomnia", "Hypertension", "High Cholesterol", "Heart Disease",
	"Arthritis", "Allergies", "Eczema", "Kidney Disease", "Liver Disease",
}

var medications = []string{
	"Ibuprofen", "Acetaminophen", "Paracetamol", "Aspirin", "Warfarin",
	"Lisinopril", "Atorvastatin", "Levothyroxine", "Metformin", "Simvastatin",
	"Omeprazole", "Amlodipine", "Metoprolol", "Albuterol", "Gabapentin",
	"Hydrochlorothiazide", "Diclofenac", "Clopidogrel", "Sildenafil",
	"Nitroglycerin", "Clarithromycin", "Sertraline", "Tramadol",
}

var vocabularies = map[string][]string{
	VocabSymptoms:    symptoms,
	VocabConditions:  conditions,
	VocabMedications: medications,
}

// Vocabulary returns a copy of the named candidate list.
func Vocabulary(name string) ([]string, bool) {
	list, ok := vocabularies[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), list...), true
}

// VocabularyNames lists the known vocabularies in sorted order.
func VocabularyNames() []string {
	names := make([]string, 0, len(vocabularies))
	for name := range vocabularies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
