package models

import "github.com/taiwx/humigrid/internal/grid"

// StationReading is one station entry from a weather snapshot. Coordinates
// and humidity are nullable in the source feed; readings missing any of the
// three are dropped before interpolation. Duplicate coordinates are legal.
type StationReading struct {
	StationID   string   `json:"station_id,omitempty"`
	Name        string   `json:"station_name,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Humidity    *float64 `json:"humidity"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Snapshot is the payload of a single weather_HHMM.json object.
type Snapshot struct {
	ObservationTime string           `json:"observation_time,omitempty"`
	Data            []StationReading `json:"data"`
}

// FrameStats summarizes one interpolated frame. Min, Max and Avg are nil
// (JSON null) when the underlying cell set is empty.
type FrameStats struct {
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	Avg          *float64 `json:"avg"`
	ValidPoints  int      `json:"valid_points"`
	StationCount int      `json:"station_count"`
}

// Frame is one timestamped grid in the timelapse output.
type Frame struct {
	Time  string     `json:"time"`
	Stats FrameStats `json:"stats"`
	Data  *grid.Grid `json:"data"`
}

// GeoInfo mirrors the grid geometry block of the existing temperature
// timelapse files. The key names are part of the output format.
type GeoInfo struct {
	BottomLeftLon float64 `json:"bottom_left_lon"`
	BottomLeftLat float64 `json:"bottom_left_lat"`
	TopRightLon   float64 `json:"top_right_lon"`
	TopRightLat   float64 `json:"top_right_lat"`
	ResolutionDeg float64 `json:"resolution_deg"`
	ResolutionKm  float64 `json:"resolution_km"`
	GridRows      int     `json:"grid_rows"`
	GridCols      int     `json:"grid_cols"`
}

type Metadata struct {
	GeneratedAt         string  `json:"generated_at"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	TotalFrames         int     `json:"total_frames"`
	GeoInfo             GeoInfo `json:"geo_info"`
	Source              string  `json:"source"`
	Description         string  `json:"description"`
	InterpolationMethod string  `json:"interpolation_method"`
}

// Document is the complete timelapse file.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Frames   []Frame  `json:"frames"`
}
