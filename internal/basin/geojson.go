package basin

import (
	"encoding/json"
	"fmt"

	"github.com/google/renameio/v2"
)

// geoJSON feature plumbing. The pack carries no geometry library and the
// consumers here only need standards-compliant output, so the types map
// straight onto encoding/json.

type geoGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type geoFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoGeometry            `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoCRS struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

type geoCollection struct {
	Type     string       `json:"type"`
	CRS      *geoCRS      `json:"crs,omitempty"`
	Features []geoFeature `json:"features"`
}

func crsFor(epsg int) *geoCRS {
	if epsg == 0 {
		return nil
	}
	return &geoCRS{
		Type:       "name",
		Properties: map[string]string{"name": fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", epsg)},
	}
}

// MarshalVoronoiGeoJSON encodes cells as a polygon FeatureCollection.
// Rings are closed on output; attrs (keyed by cell ID) become feature
// properties alongside ID. epsg 0 omits the CRS member.
func MarshalVoronoiGeoJSON(cells []Cell, attrs *Table, epsg int) ([]byte, error) {
	fc := geoCollection{Type: "FeatureCollection", CRS: crsFor(epsg)}

	for _, cell := range cells {
		ring := make([][2]float64, 0, len(cell.Ring)+1)
		ring = append(ring, cell.Ring...)
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}

		props := map[string]interface{}{"ID": cell.ID}
		if attrs != nil {
			if row, ok := attrs.Rows[cell.ID]; ok {
				for i, col := range attrs.Columns {
					props[col] = row[i]
				}
			}
		}

		fc.Features = append(fc.Features, geoFeature{
			Type:       "Feature",
			Geometry:   geoGeometry{Type: "Polygon", Coordinates: [][][2]float64{ring}},
			Properties: props,
		})
	}

	return json.MarshalIndent(fc, "", "  ")
}

// MarshalReachGeoJSON encodes reaches as a LineString FeatureCollection.
func MarshalReachGeoJSON(reaches []Reach, epsg int) ([]byte, error) {
	fc := geoCollection{Type: "FeatureCollection", CRS: crsFor(epsg)}

	for _, reach := range reaches {
		fc.Features = append(fc.Features, geoFeature{
			Type:       "Feature",
			Geometry:   geoGeometry{Type: "LineString", Coordinates: reach.Vertices},
			Properties: map[string]interface{}{"ID": reach.ID},
		})
	}

	return json.MarshalIndent(fc, "", "  ")
}

// WriteGeoJSON atomically writes encoded GeoJSON to path.
func WriteGeoJSON(data []byte, path string) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}
