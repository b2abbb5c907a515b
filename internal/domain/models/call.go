package models

import "github.com/ethereum/go-ethereum/common"

// DecodedCall is a human-readable view of a proposal's bundled call
type DecodedCall struct {
	To        common.Address `json:"to"`
	Label     string         `json:"label,omitempty"`
	Method    string         `json:"method"`
	Signature string         `json:"signature,omitempty"`
	Inputs    []DecodedInput `json:"inputs,omitempty"`
	RawData   string         `json:"rawData"`
}

// DecodedInput is one decoded argument
type DecodedInput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}
