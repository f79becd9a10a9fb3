package models

import "encoding/json"

// WeatherSourceOpenMeteo names the upstream provider in responses
const WeatherSourceOpenMeteo = "open-meteo"

// WeatherReport is upstream forecast data for one coordinate
type WeatherReport struct {
	Source string          `json:"source"`
	Lat    float64         `json:"lat"`
	Lon    float64         `json:"lon"`
	Data   json.RawMessage `json:"data"`
}
