package medapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DiseaseData is the prediction record consumed by the recommendations view.
// JSON names follow the upstream contract.
type DiseaseData struct {
	Disease      string   `json:"Disease"`
	Overview     string   `json:"Overview"`
	Diet         string   `json:"Diet"`
	Medication   string   `json:"Medication"`
	Precautions  []string `json:"Precautions"`
	Workout      string   `json:"Workout"`
	Dosage       string   `json:"Dosage"`
	SideEffects  string   `json:"Side_Effects"`
	Warnings     string   `json:"Warnings"`
	Interactions string   `json:"Interactions"`
}

// DecodeDiseaseData validates an upstream prediction body once, at the
// boundary. Free-text fields that arrive as structured JSON are kept as
// compact JSON text; Precautions may be a list, a JSON list encoded in a
// string, or semicolon-delimited text.
func DecodeDiseaseData(body []byte) (*DiseaseData, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	d := &DiseaseData{}
	fields := []struct {
		key string
		dst *string
	}{
		{"Disease", &d.Disease},
		{"Overview", &d.Overview},
		{"Diet", &d.Diet},
		{"Medication", &d.Medication},
		{"Workout", &d.Workout},
		{"Dosage", &d.Dosage},
		{"Side_Effects", &d.SideEffects},
		{"Warnings", &d.Warnings},
		{"Interactions", &d.Interactions},
	}
	for _, f := range fields {
		text, err := textField(raw[f.key])
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrMalformedResponse, f.key, err)
		}
		*f.dst = text
	}

	d.Disease = strings.TrimSpace(d.Disease)
	if d.Disease == "" {
		return nil, fmt.Errorf("%w: missing Disease", ErrMalformedResponse)
	}

	precautions, err := listField(raw["Precautions"])
	if err != nil {
		return nil, fmt.Errorf("%w: field Precautions: %v", ErrMalformedResponse, err)
	}
	d.Precautions = precautions
	return d, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func textField(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func listField(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return []string{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			text, err := textField(item)
			if err != nil {
				return nil, err
			}
			if text = strings.TrimSpace(text); text != "" {
				out = append(out, text)
			}
		}
		return out, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected list or string")
	}
	return splitEmbeddedList(s), nil
}

// splitEmbeddedList handles text such as `["a", "b"]`, `['a', 'b']` or
// `a; b`.
func splitEmbeddedList(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var decoded []string
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return compact(decoded)
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		parts := strings.Split(inner, ",")
		for i, p := range parts {
			parts[i] = strings.Trim(strings.TrimSpace(p), `'"`)
		}
		return compact(parts)
	}
	return compact(strings.Split(s, ";"))
}

func compact(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
