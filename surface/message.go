package surface

import (
	"encoding/json"
	"fmt"
)

// ExportMessage is the tagged union the card page posts back to the host.
// Exactly one variant arrives per user action.
type ExportMessage interface{ exportMessage() }

// SaveMessage asks the host to persist a captured image.
type SaveMessage struct {
	Data     string // base64 PNG data URL
	FileName string // suggested file name, may lack the .png extension
}

// CopyMessage acknowledges a completed clipboard copy.
type CopyMessage struct{}

// ErrorMessage reports a client-side rasterization or clipboard failure.
type ErrorMessage struct {
	Text string
}

func (SaveMessage) exportMessage()  {}
func (CopyMessage) exportMessage()  {}
func (ErrorMessage) exportMessage() {}

// wireMessage is the JSON shape produced by the embedded card script.
type wireMessage struct {
	Command  string `json:"command"`
	Data     string `json:"data,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Text     string `json:"text,omitempty"`
}

// DecodeMessage parses one wire message into the ExportMessage union.
// Unknown commands are a decode error, not a silent drop.
func DecodeMessage(data []byte) (ExportMessage, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("surface: decode message: %w", err)
	}
	switch w.Command {
	case "save":
		if w.Data == "" {
			return nil, fmt.Errorf("surface: save message without image data")
		}
		return SaveMessage{Data: w.Data, FileName: w.FileName}, nil
	case "copy":
		return CopyMessage{}, nil
	case "error":
		return ErrorMessage{Text: w.Text}, nil
	default:
		return nil, fmt.Errorf("surface: unknown command %q", w.Command)
	}
}
