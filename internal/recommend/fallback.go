package recommend

import (
	"fmt"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

// Template names, also used to identify which rule matched.
const (
	TemplatePhosphorusPotassium = "Fertilizante Fosfo-Potásico para Suelos Volcánicos"
	TemplateNitrogen            = "Fertilizante Nitrogenado de Liberación Controlada"
	TemplateAcidSoil            = "Encalado Dolomítico + Fertilizante Balanceado"
	TemplateMaintenance         = "Fertilización de Alta Precisión para Máximo Rendimiento"
)

// Fallback selects a canned recommendation from the reading. The rules are
// checked in order: P and K both low, N low, acid pH, otherwise maintenance.
// The same field values always select the same template.
func Fallback(r data.SensorReading) data.Recommendation {
	var rec data.Recommendation
	switch {
	case r.Phosphorus < 30 && r.Potassium < 100:
		rec = phosphorusPotassium(r)
	case r.Nitrogen < 60:
		rec = nitrogen(r)
	case r.PH < 5.5:
		rec = acidSoil(r)
	default:
		rec = maintenance(r)
	}
	rec.Source = data.SourceFallback
	return rec
}

func phosphorusPotassium(r data.SensorReading) data.Recommendation {
	return data.Recommendation{
		Diagnosis:     fmt.Sprintf("Déficit crítico de Fósforo (%g ppm) y Potasio (%g ppm) detectado en suelo volcánico.", r.Phosphorus, r.Potassium),
		Name:          TemplatePhosphorusPotassium,
		Dose:          "90-110 lb/manzana de fórmula 10-30-20 aplicado al surco",
		Product:       "NPK 10-30-20 granulado de liberación controlada",
		Price:         "GTQ 650-800 por manzana",
		Schedule:      "Aplicar 60 lb/manzana a la siembra y 40-50 lb/manzana en la floración.",
		Effectiveness: "92% para corregir deficiencias de P y K",
		Benefits: []string{
			"Corrige el déficit crítico de Fósforo en suelos volcánicos",
			"Suple la deficiencia de Potasio mejorando la resistencia hídrica",
			"Mejora el desarrollo radicular y la eficiencia en el uso de agua",
			"Aumenta el amarre de vainas y el llenado uniforme del grano",
			"Reduce el impacto del estrés por sequías intermitentes",
		},
		Precautions: []string{
			"La aplicación excesiva puede inmovilizar micronutrientes como el Zinc",
			"No aplicar en contacto directo con la semilla por riesgo de fitotoxicidad",
			"En suelos muy ácidos (pH < 5.5), la efectividad se reduce sin encalado previo",
			"Requiere humedad adecuada para la disponibilidad nutrimental",
			"El Fósforo es susceptible a fijación en suelos volcánicos",
		},
		Complementary: []string{
			"Realizar encalado si el pH es menor a 5.5",
			"Incorporar materia orgánica (5-10 ton/manzana de gallinaza)",
			"Considerar el sistema K'uxu'rum con madrecacao para aporte natural de Nitrógeno",
			"Mantener cobertura vegetal para reducir estrés por temperatura",
			"Realizar análisis de suelo cada 2 ciclos para ajustar la fertilización",
		},
	}
}

func nitrogen(r data.SensorReading) data.Recommendation {
	return data.Recommendation{
		Diagnosis:     fmt.Sprintf("Déficit de Nitrógeno (%g ppm) detectado.", r.Nitrogen),
		Name:          TemplateNitrogen,
		Dose:          "80-100 lb/manzana de Urea 46-0-0 aplicado en cobertura",
		Product:       "Urea 46-0-0 gránulos perlados",
		Price:         "GTQ 350-450 por manzana",
		Schedule:      "Aplicar 40 lb/manzana a los 15 días después de siembra y 40-60 lb/manzana a los 30 días.",
		Effectiveness: "88-92% para corregir déficit de Nitrógeno",
		Benefits: []string{
			"Corrige rápidamente el déficit de Nitrógeno para crecimiento vegetativo",
			"Estimula la producción de hojas y área foliar para mejor fotosíntesis",
			"Mejora el color verde del cultivo en 10-15 días después de aplicación",
			"Aumenta la biomasa total y capacidad productiva de la planta",
			"Fácil aplicación y rápida disponibilidad para la planta",
		},
		Precautions: []string{
			"Alta susceptibilidad a pérdidas por volatilización en temperaturas > 30°C",
			"Puede acidificar el suelo con uso continuo sin encalado",
			"Requiere aplicación fraccionada para maximizar eficiencia",
			"Sensible a condiciones de humedad excesiva o deficiente",
			"Pérdidas por lixiviación en lluvias intensas después de aplicación",
		},
		Complementary: []string{
			"Incorporar abonos verdes como mucuna o canavalia para fijación biológica de N",
			"Usar inhibidores de ureasa en aplicaciones con altas temperaturas",
			"Implementar riego por goteo para mayor eficiencia en uso de nitrógeno",
			"Monitorear niveles de Nitrógeno cada 3 semanas durante crecimiento",
			"Combinar con fuentes orgánicas como gallinaza (2-3 ton/manzana)",
		},
	}
}

func acidSoil(r data.SensorReading) data.Recommendation {
	return data.Recommendation{
		Diagnosis:     fmt.Sprintf("Suelo ácido (pH %g) que limita la disponibilidad de nutrientes.", r.PH),
		Name:          TemplateAcidSoil,
		Dose:          "1.4 ton/manzana de cal dolomítica + 100 lb/manzana de NPK 15-15-15",
		Product:       "Cal dolomítica en polvo fino + NPK 15-15-15 granulado",
		Price:         "GTQ 700-900 por manzana",
		Schedule:      "Encalar 15-30 días antes de la siembra y fertilizar al momento de sembrar.",
		Effectiveness: "85% para corregir la acidez del suelo",
		Benefits: []string{
			fmt.Sprintf("Corrige el pH ácido (%g) del suelo", r.PH),
			"Aporta calcio y magnesio esenciales",
			"Mejora la disponibilidad de fósforo en suelos volcánicos",
			"Reduce la toxicidad por aluminio",
			"Mejora la estructura del suelo",
		},
		Precautions: []string{
			"Requiere 15-30 días de reacción antes de sembrar",
			"La aplicación es laboriosa y demanda mano de obra",
			"El efecto depende de la humedad del suelo",
			"Un exceso puede reducir la disponibilidad de micronutrientes",
			"Necesita un análisis de suelo posterior para confirmar el pH",
		},
		Complementary: []string{
			"Incorporar la cal con un pase de rastra para mejor contacto",
			"Evitar fertilizantes amoniacales hasta estabilizar el pH",
			"Repetir el análisis de pH al final del ciclo",
		},
	}
}

func maintenance(r data.SensorReading) data.Recommendation {
	return data.Recommendation{
		Diagnosis:     fmt.Sprintf("Parámetros dentro de rangos óptimos: N %g ppm, P %g ppm, K %g ppm, pH %g.", r.Nitrogen, r.Phosphorus, r.Potassium, r.PH),
		Name:          TemplateMaintenance,
		Dose:          "100-120 lb/manzana de NPK 17-17-17 con micronutrientes",
		Product:       "NPK 17-17-17 + Zn, B, Mo complejado",
		Price:         "GTQ 600-750 por manzana",
		Schedule:      "Aplicar 60 lb/manzana a la siembra, 30 lb/manzana en floración y 30 lb/manzana en formación de vainas.",
		Effectiveness: "96% para maximizar rendimiento en condiciones óptimas",
		Benefits: []string{
			"Maximiza el potencial genético del cultivo en condiciones favorables",
			"Aporta micronutrientes críticos para llenado uniforme de grano",
			"Mejora calidad comercial del grano (tamaño, color, peso)",
			"Aumenta resistencia a estrés biótico y abiótico final de ciclo",
			"Optimiza eficiencia en uso de agua y nutrientes disponibles",
		},
		Precautions: []string{
			"No exceder dosis para evitar desbalances nutricionales",
			"Monitorear constantemente humedad del suelo para máxima eficiencia",
			"Ajustar aplicaciones según condiciones climáticas reales",
			"Verificar compatibilidad con productos de protección vegetal",
			"Considerar análisis de tejido para ajustes finos",
		},
		Complementary: []string{
			"Implementar riego por goteo para máxima eficiencia nutrimental",
			"Usar tensiómetros para manejo preciso de humedad",
			"Realizar aplicaciones foliares de micronutrientes en floración",
			"Mantener registros detallados para replicar éxito en próximos ciclos",
			"Considerar inoculación con rizobio para fijación biológica adicional",
		},
	}
}
