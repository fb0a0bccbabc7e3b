package explorer

import (
	"errors"

	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/graph"
)

// User-visible texts.
const (
	MsgMissingBairro   = "Por favor, selecione um bairro para gerar a rede."
	MsgFetchFailed     = "Falha ao gerar a rede. Verifique a API."
	MsgInvalidNetwork  = "A rede retornada é inválida: ocorrências com identificador repetido."
	MsgUnknownNode     = "Ocorrência não encontrada nesta rede."
	MsgNoConnections   = "Nenhuma conexão de similaridade encontrada."
	MsgNoNeighbors     = "Nenhum crime diretamente similar encontrado nesta rede."
	MsgLoading         = "Calculando similaridades..."
	MsgNeighborsHeader = "Top %d Crimes Similares"
)

// UserMessage maps an error to the text shown inline in the view.
// Network and unexpected errors share one generic message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, filter.ErrMissingRequiredFilter):
		return MsgMissingBairro
	case errors.Is(err, graph.ErrDuplicateNode):
		return MsgInvalidNetwork
	case errors.Is(err, graph.ErrUnknownNode):
		return MsgUnknownNode
	default:
		return MsgFetchFailed
	}
}
