package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

const maxListItems = 5

var guatemala = loadZone()

func loadZone() *time.Location {
	loc, err := time.LoadLocation("America/Guatemala")
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

// LocalTime renders t the way operators in Guatemala read dates.
func LocalTime(t time.Time) string {
	return t.In(guatemala).Format("2/1/2006, 15:04:05")
}

// FormatRecommendation renders a recommendation as Telegram-flavoured HTML.
func FormatRecommendation(rec data.Recommendation, at time.Time) string {
	var b strings.Builder
	esc := html.EscapeString

	b.WriteString("🌱 <b>RECOMENDACIÓN DE FERTILIZACIÓN - CULTIVO DE FRIJOL</b> 🌱\n\n")
	fmt.Fprintf(&b, "<b>🔍 Diagnóstico:</b>\n<i>%s</i>\n\n", esc(rec.Diagnosis))
	fmt.Fprintf(&b, "<b>🧪 Recomendación:</b>\n<code>%s</code>\n\n", esc(rec.Name))

	b.WriteString("<b>📊 Detalles de Aplicación:</b>\n")
	fmt.Fprintf(&b, "• <b>Dosis por manzana:</b> %s\n", esc(rec.Dose))
	fmt.Fprintf(&b, "• <b>Producto sugerido:</b> %s\n", esc(rec.Product))
	fmt.Fprintf(&b, "• <b>Precio estimado:</b> %s\n", esc(rec.Price))
	fmt.Fprintf(&b, "• <b>Esquema:</b> %s\n", esc(rec.Schedule))
	fmt.Fprintf(&b, "• <b>Eficacia esperada:</b> %s\n\n", esc(rec.Effectiveness))

	writeList(&b, "<b>✅ Beneficios Técnicos:</b>\n", rec.Benefits)
	writeList(&b, "<b>⚠️ Precauciones:</b>\n", rec.Precautions)

	b.WriteString("<b>📍 Monitoreo para cultivo de frijol en Guatemala</b>")
	fmt.Fprintf(&b, "\n<b>🕒 Fecha:</b> %s", LocalTime(at))
	return b.String()
}

func writeList(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(header)
	for i, item := range items {
		if i == maxListItems {
			break
		}
		fmt.Fprintf(b, "• %s\n", html.EscapeString(item))
	}
	b.WriteString("\n")
}

// FormatActivation is sent once when periodic monitoring starts.
func FormatActivation(interval time.Duration, at time.Time) string {
	return "🔔 <b>Sistema de Monitoreo Activado</b>\n\n" +
		"Se ha iniciado el monitoreo automático para cultivo de frijol.\n" +
		fmt.Sprintf("• Intervalo: cada %s\n", describeInterval(interval)) +
		fmt.Sprintf("• Fecha: %s\n\n", LocalTime(at)) +
		"<i>Recibirás alertas cuando se detecten condiciones críticas</i>"
}

func describeInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minutos", int(d/time.Minute))
	}
	return d.String()
}
