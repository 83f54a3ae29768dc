package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

var requiredFields = []string{
	"diagnostico",
	"nombre_recomendacion",
	"dosis_manzana",
	"producto_sugerido",
	"precio_aproximado",
	"esquema_aplicacion",
}

// ParseResponse extracts a recommendation from a model answer. The answer may
// be bare JSON, fenced JSON, or JSON embedded in prose.
func ParseResponse(content string) (data.Recommendation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return data.Recommendation{}, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	obj, err := decodeObject(content)
	if err != nil {
		return data.Recommendation{}, err
	}
	for _, f := range requiredFields {
		if v, ok := obj[f]; !ok || v == nil {
			return data.Recommendation{}, fmt.Errorf("%w: missing %s", ErrInvalidResponse, f)
		}
	}

	return data.Recommendation{
		Diagnosis:     asString(obj["diagnostico"]),
		Name:          asString(obj["nombre_recomendacion"]),
		Dose:          asString(obj["dosis_manzana"]),
		Product:       asString(obj["producto_sugerido"]),
		Price:         asString(obj["precio_aproximado"]),
		Schedule:      asString(obj["esquema_aplicacion"]),
		Effectiveness: asString(obj["eficacia_esperada"]),
		Benefits:      asStrings(obj["beneficios_tecnicos"]),
		Precautions:   asStrings(obj["precauciones"]),
		Complementary: asStrings(obj["recomendaciones_complementarias"]),
		Source:        data.SourceProvider,
	}, nil
}

func decodeObject(content string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return obj, nil
}

// asString renders scalars as text; models sometimes answer numbers or lists
// where a sentence was asked for.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []any:
		return strings.Join(asStrings(s), "; ")
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprint(s)
		}
		return string(b)
	}
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	}
	return []string{asString(v)}
}
