// Package patient holds the closed value sets shared by the symptom wizard
// and the stored profile.
package patient

type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderUnset, GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type PregnancyStatus string

const (
	NotPregnant       PregnancyStatus = "not-pregnant"
	Pregnant          PregnancyStatus = "pregnant"
	Breastfeeding     PregnancyStatus = "breastfeeding"
	PlanningPregnancy PregnancyStatus = "planning"
)

func (p PregnancyStatus) Valid() bool {
	switch p {
	case NotPregnant, Pregnant, Breastfeeding, PlanningPregnancy:
		return true
	}
	return false
}

// OrganStatus describes liver/kidney function.
type OrganStatus string

const (
	OrganNormal             OrganStatus = "normal"
	OrganMildImpairment     OrganStatus = "mild-impairment"
	OrganModerateImpairment OrganStatus = "moderate-impairment"
	OrganSevereImpairment   OrganStatus = "severe-impairment"
)

func (o OrganStatus) Valid() bool {
	switch o {
	case OrganNormal, OrganMildImpairment, OrganModerateImpairment, OrganSevereImpairment:
		return true
	}
	return false
}

// AppendUnique adds value unless it is already present.
func AppendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// Remove returns list without value.
func Remove(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
