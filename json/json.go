// Package json encodes rendered node trees as JSON documents.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/mdstream"
)

// envelope is the v1 wire format for a rendered tree.
type envelope struct {
	Version int       `json:"version"`
	Nodes   []nodeDTO `json:"nodes"`
}

// MarshalNodes serializes a node tree to JSON in v1 envelope format.
func MarshalNodes(nodes []mdstream.Node) ([]byte, error) {
	dtos, err := marshalNodes(nodes)
	if err != nil {
		return nil, err
	}
	if dtos == nil {
		dtos = []nodeDTO{}
	}
	return json.MarshalIndent(envelope{Version: 1, Nodes: dtos}, "", "  ")
}

// UnmarshalNodes deserializes a node tree from JSON in v1 envelope format.
// Component nodes decode to *mdstream.ComponentNode whatever component
// originally built them.
func UnmarshalNodes(data []byte) ([]mdstream.Node, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	return unmarshalNodes(env.Nodes)
}

// Save writes a node tree to a JSON file, creating parent directories as
// needed.
func Save(path string, nodes []mdstream.Node) error {
	data, err := MarshalNodes(nodes)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a node tree from a JSON file.
func Load(path string) ([]mdstream.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalNodes(data)
}
