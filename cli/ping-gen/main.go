package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"
)

/*
Генератор местоположений для трекера.

Отправляет одну или несколько точек на запущенный сервис, смещая координаты
случайным шагом между отправками.

Usage:
  -server string
    	Адрес API трекера (default "http://localhost:8080")
  -mode string
    	Маршрут: user, device, qr (default "qr")
  -id string
    	Идентификатор пользователя/устройства или QR-код (обязательно)
  -lat float
    	Широта
  -lon float
    	Долгота
  -name string
    	Название места
  -count int
    	Количество точек (default 1)
  -step float
    	Максимальное смещение между точками в градусах
  -interval duration
    	Пауза между отправками (default 1s)

Example

```
./ping-gen -mode qr -id 4821093746105528 -lat 55.7558 -lon 37.6173 -count 5 -step 0.001
```
*/

type ping struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName *string `json:"locationName,omitempty"`
	IsTracking   bool    `json:"isTracking"`
}

func endpoint(server, mode, id string) (method, target string, err error) {
	escaped := url.PathEscape(id)
	switch mode {
	case "user":
		return http.MethodPut, server + "/api/locations/" + escaped, nil
	case "device":
		return http.MethodPut, server + "/api/devices/" + escaped + "/location", nil
	case "qr":
		return http.MethodPost, server + "/api/qrcodes/" + escaped + "/location", nil
	default:
		return "", "", fmt.Errorf("неизвестный режим %q: ожидается user, device или qr", mode)
	}
}

// walk сдвигает точку не более чем на step по каждой оси, оставаясь в допустимом диапазоне.
func walk(lat, lon, step float64, rnd *rand.Rand) (float64, float64) {
	if step <= 0 {
		return lat, lon
	}
	lat += (rnd.Float64()*2 - 1) * step
	lon += (rnd.Float64()*2 - 1) * step

	if lat > 90 {
		lat = 90
	}
	if lat < -90 {
		lat = -90
	}
	if lon > 180 {
		lon -= 360
	}
	if lon < -180 {
		lon += 360
	}
	return lat, lon
}

func send(client *http.Client, method, target string, p ping) (int, []byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

func main() {
	server := ""
	mode := ""
	id := ""
	lat := 0.0
	lon := 0.0
	name := ""
	count := 0
	step := 0.0
	interval := time.Duration(0)

	flag.StringVar(&server, "server", "http://localhost:8080", "Адрес API трекера")
	flag.StringVar(&mode, "mode", "qr", "Маршрут: user, device, qr")
	flag.StringVar(&id, "id", "", "Идентификатор пользователя/устройства или QR-код (обязательно)")
	flag.Float64Var(&lat, "lat", 0, "Широта")
	flag.Float64Var(&lon, "lon", 0, "Долгота")
	flag.StringVar(&name, "name", "", "Название места")
	flag.IntVar(&count, "count", 1, "Количество точек")
	flag.Float64Var(&step, "step", 0, "Максимальное смещение между точками в градусах")
	flag.DurationVar(&interval, "interval", time.Second, "Пауза между отправками")

	flag.Parse()

	if id == "" {
		fmt.Println("Требуется идентификатор, смотрите помощь (-h)")
		os.Exit(1)
	}

	method, target, err := endpoint(server, mode, id)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	p := ping{Latitude: lat, Longitude: lon, IsTracking: true}
	if name != "" {
		p.LocationName = &name
	}

	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(interval)
			p.Latitude, p.Longitude = walk(p.Latitude, p.Longitude, step, rnd)
		}

		status, body, err := send(client, method, target, p)
		if err != nil {
			fmt.Println("Ошибка отправки: ", err)
			os.Exit(1)
		}
		fmt.Printf("[%d] %.6f, %.6f -> %d %s\n", i+1, p.Latitude, p.Longitude, status, bytes.TrimSpace(body))
	}
}
