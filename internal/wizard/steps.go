package wizard

type Step string

const (
	StepSymptoms       Step = "symptoms"
	StepMedicalHistory Step = "medical-history"
	StepPersonalInfo   Step = "personal-info"
	StepMedications    Step = "medications"
	StepDiagnosis      Step = "diagnosis"
	StepReview         Step = "review"
)

// Steps is the fixed order of the assessment.
var Steps = []Step{
	StepSymptoms,
	StepMedicalHistory,
	StepPersonalInfo,
	StepMedications,
	StepDiagnosis,
	StepReview,
}

var stepLabels = map[Step]string{
	StepSymptoms:       "Symptoms",
	StepMedicalHistory: "Medical History",
	StepPersonalInfo:   "Personal Info",
	StepMedications:    "Current Medications",
	StepDiagnosis:      "Potential Diagnosis",
	StepReview:         "Review",
}

func (s Step) Label() string {
	return stepLabels[s]
}

