package recommend

import (
	"fmt"
	"strings"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

// SystemInstruction frames the model as a Guatemalan bean agronomist that
// answers in JSON only.
const SystemInstruction = "Eres un ingeniero agrónomo especializado en cultivos de frijol en Guatemala, con 25 años de experiencia. " +
	"Proporcionas ÚNICAMENTE JSON válido sin comentarios adicionales. Tus recomendaciones son técnicas, prácticas y " +
	"específicas para las condiciones guatemaltecas, usando siempre MANZANA como unidad de superficie."

func nutrientStatus(v, low, high float64) string {
	switch {
	case v < low:
		return "DEFICIENTE"
	case v > high:
		return "EXCESIVO"
	default:
		return "ÓPTIMO"
	}
}

func phStatus(v float64) string {
	switch {
	case v < 5.5:
		return "ÁCIDO"
	case v > 7.0:
		return "ALCALINO"
	default:
		return "NEUTRO"
	}
}

// BuildPrompt renders the soil analysis request for one reading.
func BuildPrompt(r data.SensorReading) string {
	var b strings.Builder

	b.WriteString("Eres un ingeniero agrónomo guatemalteco con 25 años de experiencia especializada en cultivo de frijol. ")
	b.WriteString("Proporciona recomendaciones TÉCNICAS y PRÁCTICAS para pequeños y medianos agricultores. ")
	b.WriteString("Las dosis deben calcularse estrictamente por MANZANA (1 manzana = 0.70 hectáreas = 7,000 m²).\n\n")

	b.WriteString("ANÁLISIS DE SUELO proporcionado:\n")
	fmt.Fprintf(&b, "- Nitrógeno (N): %g ppm\n", r.Nitrogen)
	fmt.Fprintf(&b, "- Fósforo (P): %g ppm\n", r.Phosphorus)
	fmt.Fprintf(&b, "- Potasio (K): %g ppm\n", r.Potassium)
	fmt.Fprintf(&b, "- pH del suelo: %g\n", r.PH)
	fmt.Fprintf(&b, "- Humedad: %g%%\n", r.Humidity)
	fmt.Fprintf(&b, "- Temperatura: %g°C\n", r.Temperature)
	fmt.Fprintf(&b, "- Luz solar: %g%%\n\n", r.Sunlight)

	b.WriteString("INTERPRETACIÓN AGRONÓMICA:\n")
	fmt.Fprintf(&b, "- Nitrógeno (N): %s para frijol. Rango óptimo: 60-120 ppm.\n", nutrientStatus(r.Nitrogen, 60, 120))
	fmt.Fprintf(&b, "- Fósforo (P): %s para frijol. Rango óptimo: 30-60 ppm.\n", nutrientStatus(r.Phosphorus, 30, 60))
	fmt.Fprintf(&b, "- Potasio (K): %s para frijol. Rango óptimo: 100-200 ppm.\n", nutrientStatus(r.Potassium, 100, 200))
	fmt.Fprintf(&b, "- pH: %s. Rango ideal para frijol: 6.0-6.5.\n\n", phStatus(r.PH))

	b.WriteString("CONSIDERACIONES ESPECÍFICAS PARA GUATEMALA:\n")
	b.WriteString("- Los suelos volcánicos tienen alta capacidad de fijación de fósforo\n")
	b.WriteString("- En el Corredor Seco, priorizar la retención de humedad mediante cobertura y materia orgánica\n")
	b.WriteString("- El sistema K'uxu'rum (madre cacao + maíz + frijol) mejora la humedad del suelo y aporta nitrógeno\n\n")

	b.WriteString("Genera una recomendación PRECISA considerando los parámetros exactos proporcionados.\n\n")
	b.WriteString("DEVUELVE ÚNICAMENTE un objeto JSON con esta estructura:\n")
	b.WriteString(`{
  "diagnostico": "Breve diagnóstico técnico basado en los parámetros",
  "nombre_recomendacion": "Nombre específico de la recomendación",
  "dosis_manzana": "Cantidad exacta por manzana (ej: 100-120 lb/manzana de fórmula 10-30-10)",
  "producto_sugerido": "Fórmula NPK específica y tipo",
  "precio_aproximado": "Precio en Quetzales (GTQ) por manzana",
  "esquema_aplicacion": "Etapas y momentos de aplicación detallados",
  "eficacia_esperada": "% de efectividad para corregir las deficiencias",
  "beneficios_tecnicos": ["5 beneficios agronómicos específicos"],
  "precauciones": ["5 riesgos o consideraciones técnicas"],
  "recomendaciones_complementarias": ["Manejo de suelo, riego, otras prácticas"]
}`)
	b.WriteString("\n\nSOLO JSON, sin texto adicional.")
	return b.String()
}
