package domain

// Bounds for the number of clips a single search may request from the backend.
const (
	MinTopK     = 1
	MaxTopK     = 15
	DefaultTopK = 10
)

// DefaultDescription is rendered when the backend omits a clip description.
const DefaultDescription = "No description available"

// Clip is one ranked video segment returned by the backend. A segment covers
// roughly 30 seconds of the source video. URL is a presigned, time-limited
// link and is treated as an opaque string. VideoID and ChunkID are optional
// backend identifiers.
type Clip struct {
	ChunkID     string  `json:"chunk_id,omitempty"`
	VideoID     string  `json:"video_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
	URL         string  `json:"url"`
	ExpiresAt   string  `json:"expires_at,omitempty"`
}

// ClampTopK bounds n into [MinTopK, MaxTopK]. Out-of-range values are clamped
// to the nearest bound, never rejected.
func ClampTopK(n int) int {
	if n < MinTopK {
		return MinTopK
	}
	if n > MaxTopK {
		return MaxTopK
	}
	return n
}
