package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raphaelgruber/simnet/internal/client"
	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const networkPayload = `{
	"message": "Rede gerada com 3 ocorrências.",
	"nodes": [
		{"id": 1, "label": "Roubo 1", "group": 0, "hora": 20, "arma_utilizada": "Arma de Fogo", "dia_semana": 5},
		{"id": 2, "label": "Roubo 2", "group": 0, "hora": 21, "arma_utilizada": "Arma de Fogo", "dia_semana": 2},
		{"id": 3, "label": "Furto 3", "group": 1, "hora": null, "dia_semana": null}
	],
	"edges": [
		{"from": 1, "to": 2, "score": 0.9},
		{"from": 1, "to": 3, "score": 0.4}
	]
}`

func TestSimilarityNetwork(t *testing.T) {
	var gotQuery string
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, client.PathSimilarityNetwork, r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(networkPayload))
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/", time.Second, nil)
	p, err := filter.Build("Boa Viagem", "Roubo")
	require.NoError(t, err)

	resp, err := c.SimilarityNetwork(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "bairro=Boa+Viagem&tipo_crime=Roubo", gotQuery)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "Rede gerada com 3 ocorrências.", resp.Message)
	require.Len(t, resp.Nodes, 3)
	require.Len(t, resp.Edges, 2)
	assert.Equal(t, models.NodeID("1"), resp.Edges[0].From)
	assert.Nil(t, resp.Nodes[2].Hora)
}

func TestSimilarityNetworkOmitsEmptyCrimeType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["tipo_crime"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"message": "Nenhuma ocorrência.", "nodes": null, "edges": null}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, time.Second, nil)
	resp, err := c.SimilarityNetwork(context.Background(), filter.Params{Bairro: "Centro"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Nodes)
	assert.NotNil(t, resp.Edges)
	assert.Empty(t, resp.Nodes)
}

func TestServerErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.New(srv.URL, time.Second, nil)
	_, err := c.SimilarityNetwork(context.Background(), filter.Params{Bairro: "Centro"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrNetwork))
	assert.Contains(t, err.Error(), "500")
}

func TestMalformedBodyIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nodes": [`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, time.Second, nil)
	_, err := c.SimilarityNetwork(context.Background(), filter.Params{Bairro: "Centro"})
	assert.ErrorIs(t, err, client.ErrNetwork)
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url, time.Second, nil)
	_, err := c.UniqueBairros(context.Background())
	assert.ErrorIs(t, err, client.ErrNetwork)
}

func TestFilterOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case client.PathUniqueBairros:
			_, _ = w.Write([]byte(`["Boa Viagem", "Centro"]`))
		case client.PathUniqueCrimeTypes:
			_, _ = w.Write([]byte(`["Furto", "Roubo"]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL, time.Second, nil)

	bairros, err := c.UniqueBairros(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Boa Viagem", "Centro"}, bairros)

	types, err := c.UniqueCrimeTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Furto", "Roubo"}, types)
}

func TestNewDefaults(t *testing.T) {
	c := client.New("", 0, nil)
	assert.Equal(t, client.DefaultBaseURL, c.BaseURL())
}
