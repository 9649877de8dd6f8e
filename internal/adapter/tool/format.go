package tool

import (
	"fmt"
	"strings"
	"time"

	"flashback-query/internal/domain"
)

// usageTips closes every non-empty result listing.
const usageTips = `Usage tips:
- Read the descriptions to understand clip content before opening URLs
- URLs expire after the listed time, use them promptly
- Each clip covers roughly 30 seconds of the source video
- Descriptions combine visual content analysis with audio transcription`

// FormatClips renders ranked clips as a text block for the calling agent.
// Clips appear in the exact order received; the backend already ranked them.
func FormatClips(query string, clips []domain.Clip) string {
	if len(clips) == 0 {
		return NoResultsMessage(query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d relevant video clips for query: %q\n", len(clips), query)
	sb.WriteString("Results are sorted by relevance score (higher = more relevant).\n\n")

	for i, c := range clips {
		desc := c.Description
		if desc == "" {
			desc = domain.DefaultDescription
		}
		fmt.Fprintf(&sb, "%d. Relevance score: %.2f\n", i+1, c.Score)
		fmt.Fprintf(&sb, "   Description: %s\n", desc)
		fmt.Fprintf(&sb, "   Video URL: %s\n", c.URL)
		if exp := renderExpiry(c.ExpiresAt); exp != "" {
			fmt.Fprintf(&sb, "   URL expires: %s\n", exp)
		}
		if c.VideoID != "" {
			fmt.Fprintf(&sb, "   Video ID: %s\n", shortID(c.VideoID))
		}
		if c.ChunkID != "" {
			fmt.Fprintf(&sb, "   Chunk ID: %s\n", shortID(c.ChunkID))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(usageTips)
	return sb.String()
}

// NoResultsMessage is the fixed response for an empty result set.
func NoResultsMessage(query string) string {
	return fmt.Sprintf("No video clips found for query: %q\n\n"+
		"This could mean:\n"+
		"- No videos have been uploaded for this user\n"+
		"- The query does not match any video content\n"+
		"- Try different search terms or keywords", query)
}

// renderExpiry converts a backend expiry timestamp into a human-readable
// form. RFC 3339 values are normalized to UTC; other ISO-like values are
// trimmed to seconds precision; anything else passes through verbatim.
func renderExpiry(expiresAt string) string {
	if expiresAt == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, expiresAt); err == nil {
		return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
	}
	if strings.Contains(expiresAt, "T") && len(expiresAt) >= 19 {
		return expiresAt[:19]
	}
	return expiresAt
}

// shortID truncates opaque backend identifiers for display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
