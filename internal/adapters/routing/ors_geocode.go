package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"triptracks-service/internal/domain"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label    string `json:"label"`
			Name     string `json:"name"`
			Locality string `json:"locality"`
		} `json:"properties"`
	} `json:"features"`
}

// geocodeAutocomplete resolves a partial place name using OpenRouteService
// (/geocode/autocomplete). Results keep the provider's ranking.
func (o *ORSProvider) geocodeAutocomplete(
	ctx context.Context,
	query string,
	limit int,
) ([]domain.Location, error) {
	q := url.Values{}
	q.Set("text", query)
	q.Set("size", strconv.Itoa(limit))
	endpoint := o.baseURL + "/geocode/autocomplete?" + q.Encode()

	resp, err := o.call(ctx, "autocomplete", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 2<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode autocomplete response: %w", err)
	}

	out := make([]domain.Location, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			continue
		}

		name := f.Properties.Label
		if name == "" {
			name = f.Properties.Locality
		}
		if name == "" {
			name = f.Properties.Name
		}
		if name == "" {
			name = "Unknown"
		}

		out = append(out, domain.Location{Name: name, Lng: coords[0], Lat: coords[1]})
		if len(out) == limit {
			break
		}
	}

	return out, nil
}
