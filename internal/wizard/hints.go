package wizard

import "strings"

var symptomConditions = map[string][]string{
	"fatigue":             {"Chronic Fatigue Syndrome", "Depression", "Anemia"},
	"weight_loss":         {"Diabetes", "Hyperthyroidism", "Depression"},
	"restlessness":        {"Anxiety Disorder", "ADHD", "Hyperthyroidism"},
	"lethargy":            {"Depression", "Hypothyroidism", "Anemia"},
	"headache":            {"Migraine", "Tension Headache", "Sinusitis"},
	"fever":               {"Flu", "COVID-19", "Common Cold"},
	"cough":               {"Bronchitis", "Upper Respiratory Infection", "COVID-19"},
	"sore_throat":         {"Strep Throat", "Viral Pharyngitis", "Tonsillitis"},
	"runny_nose":          {"Allergic Rhinitis", "Common Cold", "Sinusitis"},
	"nausea":              {"Gastroenteritis", "Food Poisoning", "Migraine"},
	"chest_pain":          {"Angina", "Acid Reflux", "Costochondritis"},
	"shortness_of_breath": {"Asthma", "Anxiety", "COVID-19"},
	"dizziness":           {"Vertigo", "Low Blood Pressure", "Inner Ear Infection"},
	"abdominal_pain":      {"Gastritis", "Appendicitis", "IBS"},
	"back_pain":           {"Muscle Strain", "Herniated Disc", "Sciatica"},
	"joint_pain":          {"Arthritis", "Gout", "Fibromyalgia"},
	"muscle_pain":         {"Fibromyalgia", "Muscle Strain", "Polymyalgia"},
	"rash":                {"Eczema", "Contact Dermatitis", "Psoriasis"},
}

func symptomKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// PotentialDiseases lists conditions commonly associated with the selected
// symptoms, deduplicated in first-seen order. It is a display hint only.
func (w *Wizard) PotentialDiseases() []string {
	w.mu.Lock()
	symptoms := append([]string{}, w.form.Symptoms...)
	w.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, s := range symptoms {
		for _, d := range symptomConditions[symptomKey(s)] {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}
