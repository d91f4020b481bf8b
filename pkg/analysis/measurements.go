package analysis

import (
	"fmt"
	"sort"

	"github.com/philipparndt/gomassing/pkg/geometry"
)

// MeshNodes returns the metrics of nodes that contribute to aggregates
func MeshNodes(report *MetricsReport) []NodeMetrics {
	var nodes []NodeMetrics
	for _, n := range report.Nodes {
		if n.Contributes() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// FindNodesByVolume finds all mesh nodes within a volume range
func FindNodesByVolume(report *MetricsReport, minVolume, maxVolume float64) []NodeMetrics {
	var nodes []NodeMetrics
	for _, n := range MeshNodes(report) {
		if n.Volume >= minVolume && n.Volume <= maxVolume {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// FindLargestNodes returns the N mesh nodes with the largest volume
func FindLargestNodes(report *MetricsReport, count int) []NodeMetrics {
	nodes := MeshNodes(report)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Volume > nodes[j].Volume
	})
	return head(nodes, count)
}

// FindSmallestNodes returns the N mesh nodes with the smallest volume
func FindSmallestNodes(report *MetricsReport, count int) []NodeMetrics {
	nodes := MeshNodes(report)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Volume < nodes[j].Volume
	})
	return head(nodes, count)
}

func head(nodes []NodeMetrics, count int) []NodeMetrics {
	if count < 0 || count > len(nodes) {
		count = len(nodes)
	}
	return nodes[:count]
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

// FormatBounds formats a bounding box, or "empty" for the empty sentinel
func FormatBounds(b geometry.BoundingBox) string {
	if b.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s to %s", FormatVector(b.Min), FormatVector(b.Max))
}
