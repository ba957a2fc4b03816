package edgegraph

import "github.com/weylan/street-coverage-go/internal/models"

// ChunkTrace splits a trace into windows that respect the external
// matcher's per-request coordinate limit. Adjacent chunks overlap by one
// point so no edge is lost at a boundary. A final chunk smaller than
// minPoints is rebalanced with its predecessor, because the matcher fails
// on traces that short; no window ever exceeds chunkSize.
func ChunkTrace(points []models.GpsPoint, chunkSize, minPoints int) [][]models.GpsPoint {
	if len(points) == 0 {
		return nil
	}
	if chunkSize < 2 || len(points) <= chunkSize {
		return [][]models.GpsPoint{points}
	}

	var chunks [][]models.GpsPoint
	step := chunkSize - 1 // one point of overlap
	for start := 0; start < len(points)-1; start += step {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		chunks = append(chunks, points[start:end])
		if end == len(points) {
			break
		}
	}

	// An undersized tail cannot simply absorb into its predecessor: when
	// chunkSize equals the matcher limit the merged window would exceed
	// it. Instead pull the tail's start back to minPoints and shrink the
	// previous chunk, keeping the one-point overlap.
	if n := len(chunks); n > 1 && len(chunks[n-1]) < minPoints {
		prevStart := (n - 2) * step
		tailStart := len(points) - minPoints
		if tailStart+1-prevStart >= minPoints {
			chunks[n-2] = points[prevStart : tailStart+1]
			chunks[n-1] = points[tailStart:]
		}
	}

	return chunks
}
