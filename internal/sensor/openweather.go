package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoAPIKey - ключ OpenWeatherMap не задан.
var ErrNoAPIKey = errors.New("sensor: ключ OpenWeatherMap не настроен")

// OpenWeatherClient строит виртуальные датчики по ответам weather и air_pollution.
type OpenWeatherClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewOpenWeatherClient(baseURL, apiKey string, timeout time.Duration) *OpenWeatherClient {
	return &OpenWeatherClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
}

type airResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

// Fetch возвращает до трёх показаний. Ошибка одного из запросов не отменяет другой;
// если не удалось получить ни одного показания, возвращается ошибка.
func (c *OpenWeatherClient) Fetch(ctx context.Context, lat, lng float64) ([]Reading, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	now := c.now()
	var (
		readings []Reading
		errs     []error
	)

	var weather weatherResponse
	if err := c.get(ctx, "/weather", lat, lng, url.Values{"units": {"metric"}}, &weather); err != nil {
		errs = append(errs, err)
	} else {
		readings = append(readings,
			Reading{SensorID: "TEMP-MAIN", SensorType: TypeTemperature, Value: weather.Main.Temp, Timestamp: now, Lat: lat + 0.002, Lng: lng + 0.002},
			Reading{SensorID: "HUM-MAIN", SensorType: TypeSoilMoisture, Value: weather.Main.Humidity, Timestamp: now, Lat: lat - 0.002, Lng: lng + 0.001},
		)
	}

	var air airResponse
	if err := c.get(ctx, "/air_pollution", lat, lng, nil, &air); err != nil {
		errs = append(errs, err)
	} else if len(air.List) > 0 {
		readings = append(readings, Reading{
			SensorID:   "AIR-QA",
			SensorType: TypeSoilMoisture,
			Value:      PurityIndex(air.List[0].Main.AQI),
			Timestamp:  now,
			Lat:        lat + 0.001,
			Lng:        lng - 0.003,
		})
	}

	if len(readings) == 0 {
		if len(errs) == 0 {
			errs = append(errs, errors.New("sensor: пустой ответ OpenWeatherMap"))
		}
		return nil, errors.Join(errs...)
	}
	return readings, nil
}

// PurityIndex переводит AQI (1 - хорошо, 5 - плохо) в индекс чистоты 100..0.
func PurityIndex(aqi int) float64 {
	return float64(100 - (aqi-1)*25)
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, lat, lng float64, extra url.Values, dest any) error {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lng, 'f', -1, 64)},
		"appid": {c.apiKey},
	}
	for k, v := range extra {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("sensor: не удалось создать запрос %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sensor: запрос %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sensor: %s вернул статус %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("sensor: некорректный ответ %s: %w", path, err)
	}
	return nil
}
