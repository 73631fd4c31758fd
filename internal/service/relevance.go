package service

import "strings"

// healthKeywords se comparan como substrings sobre el mensaje en minúsculas.
// No hay límites de palabra: "sweetheart" contiene "heart" y cuenta como salud.
var healthKeywords = []string{
	"pain", "ache", "fever", "cold", "cough", "headache", "stomach", "nausea",
	"dizzy", "tired", "fatigue", "chest", "throat", "back", "joint", "muscle",
	"symptom", "sick", "illness", "disease", "hurt", "sore", "swollen", "rash",
	"breathing", "shortness", "breath", "heart", "palpitation", "anxiety", "stress",
	"blood", "pressure", "diabetes", "medication", "doctor", "hospital", "health",
	"medical", "treatment", "diagnosis", "allergy", "infection", "virus", "bacteria",
	"injury", "wound", "bruise", "cut", "burn", "fracture", "sprain", "strain",
	"mental health", "depression", "sleep", "insomnia", "weight", "diet", "nutrition",
	"exercise", "fitness", "wellness", "prevention", "vaccine", "immunization",
	"दर्द", "बुखार", "सिरदर्द", "पेट", "खांसी", "सांस", "दवा", "डॉक्टर", "स्वास्थ्य",
}

// IsHealthcareRelated clasifica el mensaje con un solo acierto de keyword.
func IsHealthcareRelated(message string) bool {
	if message == "" {
		return false
	}
	lower := strings.ToLower(message)
	for _, kw := range healthKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
