package service

// Advisory texts per diagnosis, as the clinic hands them out.
var recommendations = map[string]string{
	"Calculos":             "Consulta con un dentista para limpieza profesional (profilaxis).",
	"Caries":               "Visita urgente al dentista para tratamiento de la caries.",
	"Gingivitis":           "Mejora tu higiene bucal y consulta al dentista.",
	"Ulcera bucal":         "Evita alimentos ácidos y consulta si persiste más de 2 semanas.",
	"Dientes descoloridos": "Consulta sobre opciones de blanqueamiento dental.",
	"Dientes Normales":     "¡Excelente! Mantén tu higiene bucal actual.",
}

const fallbackRecommendation = "Consulta con un profesional dental."

// Recommendation maps a diagnosis label to its advisory text. Total over all
// strings: unknown labels get the generic fallback.
func Recommendation(label string) string {
	if text, ok := recommendations[label]; ok {
		return text
	}
	return fallbackRecommendation
}
