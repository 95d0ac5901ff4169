package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew_JSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Format: JSON, Output: &buf, Service: "orchestrator"})

	log.Info("saga transition", "from", "Initial", "to", "AwaitingSlotReservation")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "orchestrator" {
		t.Errorf("expected service attribute orchestrator, got %v", record[SERVICE])
	}
	if record["to"] != "AwaitingSlotReservation" {
		t.Errorf("expected to attribute, got %v", record["to"])
	}
}

func TestWithCorrelation(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: DEBUG, Output: &buf})

	log.WithCorrelation("c-1").Debug("ignored event")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record: %v", err)
	}
	if record[CORRELATION_ID] != "c-1" {
		t.Errorf("expected correlation id c-1, got %v", record[CORRELATION_ID])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Output: &buf})

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn("kept")
	if buf.Len() == 0 {
		t.Error("expected warn record to be written")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{DEBUG, false},
		{INFO, false},
		{EMPTY, false},
		{WARN, false},
		{ERROR, false},
		{"verbose", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf}).WithRequest("r-1").Info("request completed")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record: %v", err)
	}
	if record[REQUEST_ID] != "r-1" {
		t.Errorf("expected request id r-1, got %v", record[REQUEST_ID])
	}
}
