package service

import "strings"

// OfflineNotice encabeza toda respuesta generada sin el modelo remoto.
const OfflineNotice = "🤖 **Note**: I'm currently operating in offline mode, but I can still provide helpful health guidance based on common symptoms.\n\n"

// DisclaimerMarker está presente en la última oración de toda respuesta offline.
const DisclaimerMarker = "**Disclaimer**:"

type fallbackRule struct {
	name     string
	triggers []string
	body     string
}

// fallbackRules se evalúan en orden; gana la primera que coincide.
var fallbackRules = []fallbackRule{
	{
		name:     "chest_pain",
		triggers: []string{"chest pain", "सीने में दर्द"},
		body: "⚠️ **IMPORTANT**: Chest pain can be serious. If you're experiencing severe chest pain, especially with shortness of breath, sweating, nausea, or pain radiating to your arm or jaw, seek emergency medical attention immediately by calling emergency services.\n\n" +
			"For mild chest discomfort, it could be due to:\n" +
			"• Muscle strain from exercise or poor posture\n" +
			"• Acid reflux or heartburn\n" +
			"• Stress or anxiety\n" +
			"• Costochondritis (inflammation of chest wall)\n\n" +
			"However, it's always best to consult a healthcare provider for proper evaluation, especially if the pain persists or worsens.\n\n" +
			DisclaimerMarker + " This is general information only and not a substitute for professional medical advice.",
	},
	{
		name:     "headache",
		triggers: []string{"headache", "सिरदर्द"},
		body: "Headaches can have various causes and here's some general guidance:\n\n" +
			"**Common causes:**\n" +
			"• Stress and tension\n" +
			"• Dehydration\n" +
			"• Lack of sleep\n" +
			"• Eye strain from screens\n" +
			"• Skipped meals\n" +
			"• Poor posture\n\n" +
			"**Self-care measures:**\n" +
			"• Rest in a quiet, dark room\n" +
			"• Stay hydrated with water\n" +
			"• Apply a cold or warm compress\n" +
			"• Gentle neck and shoulder stretches\n" +
			"• Over-the-counter pain relievers as directed\n\n" +
			"**Seek immediate medical attention if you experience:**\n" +
			"• Sudden, severe headache unlike any before\n" +
			"• Headache with fever and neck stiffness\n" +
			"• Headache with vision changes or confusion\n" +
			"• Headache after a head injury\n\n" +
			DisclaimerMarker + " This is general information only. Consult a healthcare provider for persistent or concerning headaches.",
	},
	{
		name:     "fever",
		triggers: []string{"fever", "बुखार"},
		body: "Fever is your body's natural response to infection. Here's what you should know:\n\n" +
			"**For adults:**\n" +
			"• Normal body temperature: 98.6°F (37°C)\n" +
			"• Low-grade fever: 100.4°F (38°C)\n" +
			"• High fever: 103°F (39.4°C) or higher\n\n" +
			"**Self-care measures:**\n" +
			"• Stay hydrated with water, clear broths, or electrolyte solutions\n" +
			"• Rest and avoid strenuous activity\n" +
			"• Dress lightly and keep room cool\n" +
			"• Consider over-the-counter fever reducers (follow package directions)\n\n" +
			"**Seek immediate medical attention if:**\n" +
			"• Fever exceeds 103°F (39.4°C)\n" +
			"• Fever persists for more than 3 days\n" +
			"• Accompanied by difficulty breathing, chest pain, severe headache, or confusion\n" +
			"• Signs of dehydration\n\n" +
			DisclaimerMarker + " This is general information only. Always consult a healthcare provider for medical concerns.",
	},
}

const genericFallback = "I understand you're experiencing health concerns. Here's some general guidance:\n\n" +
	"**General health recommendations:**\n" +
	"• Monitor your symptoms closely\n" +
	"• Stay hydrated and get adequate rest\n" +
	"• Consider over-the-counter remedies as appropriate for your symptoms\n" +
	"• Maintain good hygiene practices\n\n" +
	"**When to seek medical care:**\n" +
	"• Symptoms worsen or don't improve\n" +
	"• You develop new concerning symptoms\n" +
	"• You have underlying health conditions\n" +
	"• You're unsure about the severity of your symptoms\n\n" +
	"**For emergencies, call emergency services immediately if you experience:**\n" +
	"• Difficulty breathing\n" +
	"• Chest pain\n" +
	"• Severe bleeding\n" +
	"• Loss of consciousness\n" +
	"• Signs of stroke\n\n" +
	DisclaimerMarker + " This is general information only and not a substitute for professional medical advice. Please consult with a healthcare provider for proper evaluation and treatment of your specific symptoms."

// FallbackSynthesizer produce respuestas deterministas cuando el modelo remoto no está disponible.
type FallbackSynthesizer struct{}

func NewFallbackSynthesizer() FallbackSynthesizer {
	return FallbackSynthesizer{}
}

// Synthesize no hace I/O y siempre termina con la oración de disclaimer.
func (FallbackSynthesizer) Synthesize(message string) string {
	return OfflineNotice + matchFallbackRule(message).body
}

// RuleName devuelve la regla que aplicaría a message, "generic" si ninguna coincide.
func (FallbackSynthesizer) RuleName(message string) string {
	return matchFallbackRule(message).name
}

func matchFallbackRule(message string) fallbackRule {
	lower := strings.ToLower(message)
	for _, rule := range fallbackRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				return rule
			}
		}
	}
	return fallbackRule{name: "generic", body: genericFallback}
}
