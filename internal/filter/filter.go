// Package filter turns the user's network filters into backend query parameters.
package filter

import (
	"errors"
	"net/url"
	"strings"
)

// ErrMissingRequiredFilter indicates the mandatory bairro filter is empty.
// Callers must block submission instead of issuing the request.
var ErrMissingRequiredFilter = errors.New("bairro is required")

// Query parameter names understood by the similarity-network endpoint.
const (
	ParamBairro    = "bairro"
	ParamTipoCrime = "tipo_crime"
)

// Params is a validated similarity-network query.
type Params struct {
	Bairro    string `json:"bairro"`
	TipoCrime string `json:"tipo_crime,omitempty"` // Empty means no type filter
}

// Build validates the filters. bairro is mandatory; tipoCrime is kept
// verbatim when non-empty and omitted otherwise.
func Build(bairro, tipoCrime string) (Params, error) {
	if strings.TrimSpace(bairro) == "" {
		return Params{}, ErrMissingRequiredFilter
	}
	return Params{Bairro: bairro, TipoCrime: tipoCrime}, nil
}

// Values encodes the query. tipo_crime is absent, not empty, when unset.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set(ParamBairro, p.Bairro)
	if p.TipoCrime != "" {
		v.Set(ParamTipoCrime, p.TipoCrime)
	}
	return v
}

// String renders the filters for logs and status lines.
func (p Params) String() string {
	if p.TipoCrime == "" {
		return p.Bairro
	}
	return p.Bairro + " / " + p.TipoCrime
}
