package masking

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaskedSecretValue replaces every value in a Kubernetes Secret's data or
// stringData map. A diff that adds or edits a manifest is common enough in
// infrastructure-touching pull requests that this needs structural
// awareness, not just a regex sweep — a ConfigMap with a key named
// "password" must not get masked, but a Secret's actual data must.
const MaskedSecretValue = "[MASKED_SECRET_DATA]"

var (
	yamlSecretKindLine = regexp.MustCompile(`(?m)^kind:\s*Secret\s*$`)
	jsonSecretKindField = regexp.MustCompile(`"kind"\s*:\s*"Secret"`)
)

// KubernetesSecretMasker masks data/stringData fields in Secret and
// SecretList resources, leaving every other kind untouched.
type KubernetesSecretMasker struct{}

func (m *KubernetesSecretMasker) Name() string { return "kubernetes_secret" }

func (m *KubernetesSecretMasker) AppliesTo(data string) bool {
	if !strings.Contains(data, "Secret") {
		return false
	}
	return yamlSecretKindLine.MatchString(data) || jsonSecretKindField.MatchString(data)
}

// Mask detects JSON vs YAML by the first non-space byte and masks in
// place, falling back to the original text on any parse error.
func (m *KubernetesSecretMasker) Mask(data string) string {
	trimmed := strings.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if masked := m.maskJSON(data); masked != data {
			return masked
		}
	}
	return m.maskYAML(data)
}

func (m *KubernetesSecretMasker) maskYAML(data string) string {
	decoder := yaml.NewDecoder(strings.NewReader(data))
	var docs []map[string]any
	changed := false

	for {
		var doc map[string]any
		if err := decoder.Decode(&doc); err == io.EOF {
			break
		} else if err != nil {
			return data
		}
		if doc == nil {
			continue
		}
		if maskResource(doc) {
			changed = true
		}
		docs = append(docs, doc)
	}
	if !changed || len(docs) == 0 {
		return data
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return data
		}
	}
	if err := enc.Close(); err != nil {
		return data
	}

	result := strings.TrimRight(buf.String(), "\n")
	if strings.HasSuffix(data, "\n") {
		result += "\n"
	}
	return result
}

func (m *KubernetesSecretMasker) maskJSON(data string) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return data
	}
	if !maskResource(obj) {
		return data
	}

	result, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return data
	}
	out := string(result)
	if strings.HasSuffix(data, "\n") {
		out += "\n"
	}
	return out
}

// maskResource masks a Secret/SecretList resource in place, including any
// items nested under a Kubernetes List wrapper, and reports whether
// anything was changed. One path handles both YAML- and JSON-decoded
// documents since both land in the same map[string]any shape.
func maskResource(resource map[string]any) bool {
	kind, _ := resource["kind"].(string)

	switch {
	case kind == "Secret":
		maskDataFields(resource)
		maskAnnotationSecrets(resource)
		return true

	case kind == "SecretList":
		changed := false
		for _, item := range listItems(resource) {
			maskDataFields(item)
			maskAnnotationSecrets(item)
			changed = true
		}
		return changed

	case kind == "List" || strings.HasSuffix(kind, "List"):
		changed := false
		for _, item := range listItems(resource) {
			itemKind, _ := item["kind"].(string)
			if itemKind == "Secret" {
				maskDataFields(item)
				maskAnnotationSecrets(item)
				changed = true
			}
		}
		return changed

	default:
		return false
	}
}

func listItems(resource map[string]any) []map[string]any {
	raw, ok := resource["items"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func maskDataFields(resource map[string]any) {
	for _, field := range []string{"data", "stringData"} {
		m, ok := resource[field].(map[string]any)
		if !ok {
			continue
		}
		for key := range m {
			m[key] = MaskedSecretValue
		}
	}
}

// maskAnnotationSecrets handles the common case of a Secret's JSON form
// embedded in an annotation (e.g. kubectl's last-applied-configuration).
func maskAnnotationSecrets(resource map[string]any) {
	metadata, ok := resource["metadata"].(map[string]any)
	if !ok {
		return
	}
	annotations, ok := metadata["annotations"].(map[string]any)
	if !ok {
		return
	}

	for key, val := range annotations {
		strVal, ok := val.(string)
		if !ok || !strings.Contains(strVal, "Secret") {
			continue
		}
		var embedded map[string]any
		if err := json.Unmarshal([]byte(strVal), &embedded); err != nil {
			continue
		}
		if kind, _ := embedded["kind"].(string); kind != "Secret" {
			continue
		}
		maskDataFields(embedded)
		if masked, err := json.Marshal(embedded); err == nil {
			annotations[key] = string(masked)
		}
	}
}
