package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const networkBody = `{
	"message": "Rede gerada",
	"nodes": [
		{"id": 1, "label": "Roubo 1", "bairro": "Centro", "hora": 20, "arma_utilizada": "Faca", "dia_semana": 4},
		{"id": 2, "label": "Roubo 2", "bairro": "Centro", "hora": 21, "arma_utilizada": "Faca", "dia_semana": 4},
		{"id": 3, "label": "Furto 3", "bairro": "Centro"}
	],
	"edges": [
		{"from": 1, "to": 2, "score": 0.9},
		{"from": 1, "to": 3, "score": 0.4},
		{"from": 2, "to": 3, "score": 0.95}
	]
}`

// newBackend serves a fixed network and filter lists.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/analysis/similarity-network", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bairro") == "" {
			http.Error(w, "bairro required", http.StatusBadRequest)
			return
		}
		w.Write([]byte(networkBody))
	})
	mux.HandleFunc("/statistics/unique-bairros", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["Centro", "Boa Viagem"]`))
	})
	mux.HandleFunc("/statistics/unique-crime-types", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["Roubo", "Furto"]`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// execute runs the root command against a test backend and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ts := newBackend(t)
	t.Setenv("SIMNET_API_URL", ts.URL)
	t.Setenv("SIMNET_LOG_FILE", filepath.Join(t.TempDir(), "simnet.log"))
	t.Setenv("SIMNET_LOG_LEVEL", "ERROR")
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetErr(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores flag variables; cobra keeps values between runs.
func resetFlags() {
	verbose, showStats, apiURL, topK = false, false, "", 0
	networkBairro, networkTipo, networkJSON = "", "", false
	neighborsBairro, neighborsTipo, neighborsJSON = "", "", false
	explainBairro, explainTipo = "", ""
	exportBairro, exportTipo, exportFormat, exportOutput = "", "", "json", ""
}

func TestOptionsCommand(t *testing.T) {
	out, err := execute(t, "options")
	require.NoError(t, err)

	assert.Contains(t, out, "Bairros (2):")
	assert.Contains(t, out, "- Boa Viagem")
	assert.Contains(t, out, "Tipos de crime (2):")
	assert.Contains(t, out, "- Furto")
}

func TestNetworkCommand(t *testing.T) {
	out, err := execute(t, "network", "--bairro", "Centro")
	require.NoError(t, err)

	assert.Contains(t, out, "Rede gerada")
	assert.Contains(t, out, "Network Centro: 3 nodes, 3 links, 1 groups")
	assert.Contains(t, out, "- [1] Roubo 1 (2 links)")
}

func TestNetworkCommandMissingBairro(t *testing.T) {
	_, err := execute(t, "network", "--tipo", "Roubo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Por favor, selecione um bairro")
}

func TestNetworkCommandJSON(t *testing.T) {
	out, err := execute(t, "network", "-b", "Centro", "--json")
	require.NoError(t, err)

	var view struct {
		Phase string `json:"phase"`
		Stats struct {
			Nodes int `json:"nodes"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "loaded", view.Phase)
	assert.Equal(t, 3, view.Stats.Nodes)
}

func TestNeighborsCommand(t *testing.T) {
	out, err := execute(t, "neighbors", "1", "--bairro", "Centro")
	require.NoError(t, err)

	assert.Contains(t, out, "[1] Roubo 1")
	assert.Contains(t, out, "Top 5 Crimes Similares:")
	assert.Contains(t, out, " 1. [2] Roubo 2  score 0.9000")
	assert.Contains(t, out, " 2. [3] Furto 3  score 0.4000")
	assert.Contains(t, out, "Hora próxima (20h e 21h) · Arma: Faca · Dia: Sexta")
}

func TestNeighborsCommandTopK(t *testing.T) {
	out, err := execute(t, "neighbors", "1", "--bairro", "Centro", "-k", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Top 1 Crimes Similares:")
	assert.NotContains(t, out, "Furto 3")
}

func TestNeighborsCommandUnknownNode(t *testing.T) {
	_, err := execute(t, "neighbors", "99", "--bairro", "Centro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99")
}

func TestExplainCommand(t *testing.T) {
	out, err := execute(t, "explain", "2", "1", "--bairro", "Centro")
	require.NoError(t, err)

	assert.Contains(t, out, "- Hora próxima (21h e 20h)")
	assert.Contains(t, out, "- Arma: Faca")
	assert.Contains(t, out, "- Dia: Sexta")

	out, err = execute(t, "explain", "1", "3", "--bairro", "Centro")
	require.NoError(t, err)
	assert.Contains(t, out, "No common points.")
}

func TestExportCommandYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	_, err := execute(t, "export", "--bairro", "Centro", "--format", "yaml", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Nodes []map[string]any `yaml:"nodes"`
		Links []struct {
			Source string  `yaml:"source"`
			Target string  `yaml:"target"`
			Score  float64 `yaml:"score"`
		} `yaml:"links"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Len(t, doc.Nodes, 3)
	require.Len(t, doc.Links, 3)
	assert.Equal(t, "1", doc.Links[0].Source)
	assert.Equal(t, "2", doc.Links[0].Target)
	assert.InDelta(t, 0.9, doc.Links[0].Score, 1e-9)
}

func TestExportCommandRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "export", "--bairro", "Centro", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
