package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/sim"
)

type ExportData struct {
	Info        RunInfo            `json:"info"`
	Ticks       int                `json:"ticks"`
	Arrived     bool               `json:"arrived"`
	ArrivalTick int                `json:"arrival_tick"`
	Poses       []dynamo.Pose      `json:"poses"`
	Commands    []ExportCommand    `json:"commands"`
	Metrics     map[string]float64 `json:"metrics"`
}

type ExportCommand struct {
	V float64 `json:"v"`
	W float64 `json:"w"`
}

// ExportJSON writes the full trajectory of a run as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	data := ExportData{
		Info:        info,
		Ticks:       result.Ticks,
		Arrived:     result.Arrived,
		ArrivalTick: result.ArrivalTick,
		Poses:       result.Poses,
		Commands:    make([]ExportCommand, len(result.Commands)),
		Metrics:     result.Metrics,
	}
	for i, c := range result.Commands {
		data.Commands[i] = ExportCommand{V: c.Velocity, W: c.AngularVelocity}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
