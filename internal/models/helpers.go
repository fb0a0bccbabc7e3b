// Package models defines the data structures exchanged with the crime
// analytics backend and shared by the graph explorer.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NodeID is an opaque node identifier. The backend may send ids as JSON
// numbers or strings; both decode to the same textual form.
type NodeID string

// UnmarshalJSON accepts a JSON string or number.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("node id cannot be null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode node id: %w", err)
		}
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode node id: %w", err)
	}
	*id = NodeID(n.String())
	return nil
}

// MarshalJSON writes integer ids back as numbers so the renderer sees the
// same ids the backend sent.
func (id NodeID) MarshalJSON() ([]byte, error) {
	if _, ok := id.integer(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Less is a strict total order on ids: integer ids come first in numeric
// order, followed by all other ids in lexicographic order.
func (id NodeID) Less(other NodeID) bool {
	a, aok := id.integer()
	b, bok := other.integer()
	switch {
	case aok && bok:
		return a < b
	case aok != bok:
		return aok
	default:
		return id < other
	}
}

func (id NodeID) String() string {
	return string(id)
}

func (id NodeID) integer() (int64, bool) {
	s := string(id)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	// Reject forms like "007" or "+7" that would not round-trip.
	if strconv.FormatInt(v, 10) != s {
		return 0, false
	}
	return v, true
}

// ParseNodeID normalizes user input (e.g. a CLI argument) into a NodeID.
func ParseNodeID(s string) NodeID {
	return NodeID(strings.TrimSpace(s))
}
