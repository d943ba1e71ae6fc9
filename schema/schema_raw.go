package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawDocument is the burndown document as delivered by a data source.
// Environments keep the key order of the source document.
type RawDocument struct {
	Environments []RawEnvironment
}

// RawEnvironment is the unnormalized input of one environment.
type RawEnvironment struct {
	Name    string      `json:"-"`
	Target  RawTarget   `json:"target"`
	InScope RawScope    `json:"inScope"`
	Series  []RawSeries `json:"series"`
}

// RawTarget is the tagged form of a target that is either a single date
// shared by both tracks or a per-track pair.
type RawTarget struct {
	Spa          string
	Microservice string
}

// RawScope holds optional in-scope totals per track.
type RawScope struct {
	Spa          *float64 `json:"spa"`
	Microservice *float64 `json:"microservice"`
}

// RawSeries is one named point series, e.g. "spa.actual".
type RawSeries struct {
	Key    string     `json:"key"`
	Points []RawPoint `json:"points"`
}

// RawPoint is a single observation of a series.
type RawPoint struct {
	X     string   `json:"x"`
	Y     *float64 `json:"y"`
	Total *float64 `json:"total,omitempty"`
}

// UnmarshalJSON decodes the environments object preserving key order.
func (d *RawDocument) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	raw, ok := top["environments"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		d.Environments = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode environments: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode environments: expected object, got %v", tok)
	}

	envs := make([]RawEnvironment, 0)
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode environments: %w", err)
		}
		name, _ := tok.(string)
		var env RawEnvironment
		if err := dec.Decode(&env); err != nil {
			return fmt.Errorf("decode environment %q: %w", name, err)
		}
		env.Name = name
		// A repeated key replaces the earlier value but keeps its position.
		if idx, dup := seen[name]; dup {
			envs[idx] = env
			continue
		}
		seen[name] = len(envs)
		envs = append(envs, env)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode environments: %w", err)
	}
	d.Environments = envs
	return nil
}

// MarshalJSON encodes the document back into its source shape.
func (d RawDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"environments":{`)
	for i, env := range d.Environments {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(env.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a bare date string or a {spa, microservice} object.
func (t *RawTarget) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = RawTarget{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = RawTarget{Spa: s, Microservice: s}
		return nil
	}
	var pair struct {
		Spa          string `json:"spa"`
		Microservice string `json:"microservice"`
		Ms           string `json:"ms"`
	}
	if err := json.Unmarshal(trimmed, &pair); err != nil {
		return fmt.Errorf("decode target: %w", err)
	}
	if pair.Microservice == "" {
		pair.Microservice = pair.Ms
	}
	*t = RawTarget{Spa: pair.Spa, Microservice: pair.Microservice}
	return nil
}

// MarshalJSON collapses identical per-track targets into a bare string.
func (t RawTarget) MarshalJSON() ([]byte, error) {
	if t.Spa == t.Microservice {
		if t.Spa == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.Spa)
	}
	return json.Marshal(struct {
		Spa          string `json:"spa,omitempty"`
		Microservice string `json:"microservice,omitempty"`
	}{t.Spa, t.Microservice})
}

// UnmarshalJSON accepts "ms" as an alias for "microservice".
func (s *RawScope) UnmarshalJSON(data []byte) error {
	var aux struct {
		Spa          *float64 `json:"spa"`
		Microservice *float64 `json:"microservice"`
		Ms           *float64 `json:"ms"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode inScope: %w", err)
	}
	if aux.Microservice == nil {
		aux.Microservice = aux.Ms
	}
	*s = RawScope{Spa: aux.Spa, Microservice: aux.Microservice}
	return nil
}

// For returns the in-scope figure of the given track, if any.
func (s RawScope) For(t ServiceType) *float64 {
	if t == MsType {
		return s.Microservice
	}
	return s.Spa
}
