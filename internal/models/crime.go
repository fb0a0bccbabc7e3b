package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CrimeNode is one crime occurrence represented as a graph vertex.
// Field names follow the backend's snake_case wire format.
type CrimeNode struct {
	ID    NodeID `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Group any    `json:"group,omitempty" yaml:"group,omitempty"` // Cluster tag, only used for coloring

	Bairro                 string     `json:"bairro,omitempty" yaml:"bairro,omitempty"`
	TipoCrime              string     `json:"tipo_crime,omitempty" yaml:"tipo_crime,omitempty"`
	ArmaUtilizada          string     `json:"arma_utilizada,omitempty" yaml:"arma_utilizada,omitempty"`
	QuantidadeVitimas      *int       `json:"quantidade_vitimas,omitempty" yaml:"quantidade_vitimas,omitempty"`
	QuantidadeSuspeitos    *int       `json:"quantidade_suspeitos,omitempty" yaml:"quantidade_suspeitos,omitempty"`
	SexoSuspeito           string     `json:"sexo_suspeito,omitempty" yaml:"sexo_suspeito,omitempty"`
	IdadeSuspeito          *int       `json:"idade_suspeito,omitempty" yaml:"idade_suspeito,omitempty"`
	OrgaoResponsavel       string     `json:"orgao_responsavel,omitempty" yaml:"orgao_responsavel,omitempty"`
	StatusInvestigacao     string     `json:"status_investigacao,omitempty" yaml:"status_investigacao,omitempty"`
	DescricaoModusOperandi string     `json:"descricao_modus_operandi,omitempty" yaml:"descricao_modus_operandi,omitempty"`
	DataOcorrencia         *Timestamp `json:"data_ocorrencia,omitempty" yaml:"data_ocorrencia,omitempty"`
	Hora                   *int       `json:"hora,omitempty" yaml:"hora,omitempty"`             // 0-23
	DiaSemana              *int       `json:"dia_semana,omitempty" yaml:"dia_semana,omitempty"` // 0 = Monday
}

// GroupKey returns the group tag as a string for counting and coloring.
func (n CrimeNode) GroupKey() string {
	if n.Group == nil {
		return ""
	}
	return fmt.Sprintf("%v", n.Group)
}

// SimilarityEdge is an undirected scored link between two occurrences.
// Score is opaque: only its ordering is meaningful.
type SimilarityEdge struct {
	From  NodeID  `json:"from" yaml:"from"`
	To    NodeID  `json:"to" yaml:"to"`
	Score float64 `json:"score" yaml:"score"`
}

// Other returns the endpoint opposite to id.
func (e SimilarityEdge) Other(id NodeID) NodeID {
	if e.From == id {
		return e.To
	}
	return e.From
}

// NeighborResult pairs an adjacent node with the score of the link to it.
type NeighborResult struct {
	Node  CrimeNode `json:"node" yaml:"node"`
	Score float64   `json:"score" yaml:"score"`
}

// NetworkResponse is the backend payload for one similarity-network query.
type NetworkResponse struct {
	Message string           `json:"message" yaml:"message"`
	Nodes   []CrimeNode      `json:"nodes" yaml:"nodes"`
	Edges   []SimilarityEdge `json:"edges" yaml:"edges"`
}

// timestampLayouts are tried in order when decoding data_ocorrencia.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes the backend's occurrence timestamps, which may or may
// not carry a zone offset.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses a quoted timestamp in any of the accepted layouts.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp: %q", s)
}

// MarshalYAML writes the timestamp as RFC 3339.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Format(time.RFC3339), nil
}

// MarshalJSON writes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
