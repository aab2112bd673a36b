// Package config defines the EDIStreams application configuration: the X12
// parsing constants, NATS connection settings, and input component settings.
// Configuration is loaded once per process and shared read-only thereafter.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Version string      `json:"version"` // Semantic version (e.g., "1.0.0")
	X12     X12Config   `json:"x12"`
	NATS    NATSConfig  `json:"nats"`
	Input   InputConfig `json:"input"`
}

// X12Config holds the parsing constants for an X12 transmission. The ISA
// control segment is fixed-length; the structural delimiters live at fixed
// byte offsets within it. Version identifiers live at fixed field positions
// within the tokenized ISA/GS/ST segments.
type X12Config struct {
	// Byte offsets within the ISA control segment
	ISAElementSeparator    int `json:"isa_element_separator"`
	ISARepetitionSeparator int `json:"isa_repetition_separator"`
	ISAComponentSeparator  int `json:"isa_component_separator"`
	ISASegmentTerminator   int `json:"isa_segment_terminator"`
	ISASegmentLength       int `json:"isa_segment_length"`

	// Field positions within tokenized control segments
	ISAControlVersion int `json:"isa_control_version"`
	GSFunctionalCode  int `json:"gs_functional_code"`
	GSFunctionVersion int `json:"gs_function_version"`
	STTransactionCode int `json:"st_transaction_code"`

	// Tokenizer read buffer size in characters
	ReaderBufferSize int `json:"reader_buffer_size"`
}

// NATSConfig defines NATS connection settings.
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
	JetStream     bool          `json:"jetstream,omitempty"`
	StreamName    string        `json:"stream_name,omitempty"`
}

// InputConfig defines settings for the file input component.
type InputConfig struct {
	// Sources lists inline X12 payloads or paths to X12 files.
	Sources []string `json:"sources,omitempty"`
	// Subject is the NATS subject assembled claim documents are published to.
	Subject string `json:"subject,omitempty"`
	// Publish enables publishing; when false the component only validates.
	Publish bool `json:"publish"`
}

// DefaultX12Config returns the standard ISA layout. These values come from
// the X12 interchange control standard: a 106 character ISA segment with the
// element separator at byte 3, the repetition separator at byte 82, the
// component separator at byte 104, and the segment terminator at byte 105.
func DefaultX12Config() X12Config {
	return X12Config{
		ISAElementSeparator:    3,
		ISARepetitionSeparator: 82,
		ISAComponentSeparator:  104,
		ISASegmentTerminator:   105,
		ISASegmentLength:       106,
		ISAControlVersion:      12,
		GSFunctionalCode:       1,
		GSFunctionVersion:      8,
		STTransactionCode:      1,
		ReaderBufferSize:       1024000,
	}
}

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		X12:     DefaultX12Config(),
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		Input: InputConfig{
			Subject: "edi.claims.837",
		},
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}

	return &clone
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if err := c.X12.Validate(); err != nil {
		return fmt.Errorf("x12 configuration: %w", err)
	}

	if c.Input.Publish {
		if len(c.NATS.URLs) == 0 {
			return errors.New("nats.urls is required when input.publish is enabled")
		}
		if c.Input.Subject == "" {
			return errors.New("input.subject is required when input.publish is enabled")
		}
	}

	return nil
}

// Validate checks the X12 parsing constants for internal consistency.
func (x *X12Config) Validate() error {
	if x.ISASegmentLength <= 0 {
		return errors.New("isa_segment_length must be positive")
	}

	offsets := map[string]int{
		"isa_element_separator":    x.ISAElementSeparator,
		"isa_repetition_separator": x.ISARepetitionSeparator,
		"isa_component_separator":  x.ISAComponentSeparator,
		"isa_segment_terminator":   x.ISASegmentTerminator,
	}
	for name, offset := range offsets {
		if offset < 0 || offset >= x.ISASegmentLength {
			return fmt.Errorf("%s offset %d outside ISA segment (length %d)",
				name, offset, x.ISASegmentLength)
		}
	}

	if x.ReaderBufferSize < x.ISASegmentLength {
		return fmt.Errorf("reader_buffer_size %d smaller than ISA segment length %d",
			x.ReaderBufferSize, x.ISASegmentLength)
	}

	return nil
}
