// Package sensor отдаёт показания датчиков для карты: живые данные OpenWeatherMap
// или случайные значения, если источник недоступен.
package sensor

import "time"

const (
	TypeTemperature  = "temperature"
	TypeSoilMoisture = "soil_moisture"
)

type Reading struct {
	SensorID   string    `json:"sensor_id"`
	SensorType string    `json:"sensor_type"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
}
