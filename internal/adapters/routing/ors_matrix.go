package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/ports"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchRoute retrieves distance and duration for a single origin->destination
// pair using the OpenRouteService matrix endpoint.
func (o *ORSProvider) fetchRoute(
	ctx context.Context,
	from domain.Location,
	to domain.Location,
) (ports.RouteResult, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	bodyObj := matrixRequest{
		Locations:    [][]float64{from.CoordsToList(), to.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
		Units:        "km",
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.call(ctx, "matrix", http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ports.RouteResult{}, err
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.RouteResult{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return ports.RouteResult{}, fmt.Errorf(
			"expected 1 source row; got distances=%d durations=%d",
			len(mr.Distances), len(mr.Durations),
		)
	}

	if len(mr.Distances[0]) != 1 || len(mr.Durations[0]) != 1 {
		return ports.RouteResult{}, fmt.Errorf(
			"expected 1 destination; got distances=%d durations=%d",
			len(mr.Distances[0]), len(mr.Durations[0]),
		)
	}

	km := mr.Distances[0][0]
	seconds := mr.Durations[0][0]

	// ORS reports null for unroutable pairs.
	if km == nil || seconds == nil {
		return ports.RouteResult{}, fmt.Errorf("matrix returned no route between %v and %v", from.CoordsToList(), to.CoordsToList())
	}

	return ports.RouteResult{
		DistanceKm:      *km,
		DurationMinutes: *seconds / 60,
	}, nil
}
