package models

// Sex codes stored in students.sex
const (
	SexMale   = "M"
	SexFemale = "F"
)

// SexLabel returns the display name of a sex code
func SexLabel(code string) string {
	switch code {
	case SexMale:
		return "Masculino"
	case SexFemale:
		return "Feminino"
	default:
		return ""
	}
}
