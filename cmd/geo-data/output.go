package main

import (
	"encoding/json"
	"fmt"
	"io"
)

type summary struct {
	Command string `json:"command"`
	Status  string `json:"status"`
	Mode    string `json:"mode,omitempty"`
	Result  any    `json:"result"`
}

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return withCode(exitIO, fmt.Errorf("json encode: %w", err))
	}
	return nil
}
