// Package preview builds display-only previews for attachments, locations
// and voice clips. No network I/O happens here; map previews are URLs the
// view may embed or open.
package preview

import (
	"strconv"
	"strings"

	"github.com/matheus3301/pawchat/internal/upload"
)

// Kind discriminates preview variants.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
	KindAudio Kind = "audio"
	KindMap   Kind = "map"
)

// Preview is a render-ready description of a local resource.
type Preview struct {
	Kind  Kind
	Label string // display name for file previews
	URL   string // blob: URL or map embed URL
}

// ForFile builds a preview for an attachment. Images get an inline blob URL;
// everything else renders as a generic file entry with its display name.
func ForFile(info upload.FileInfo, data []byte, blobs *BlobStore) Preview {
	if strings.HasPrefix(info.MIMEType, "image/") {
		return Preview{
			Kind: KindImage,
			URL:  blobs.Create(data, info.MIMEType),
		}
	}
	return Preview{
		Kind:  KindFile,
		Label: info.Name,
	}
}

// ForAudio builds a playable preview for a recorded clip.
func ForAudio(data []byte, mimeType string, blobs *BlobStore) Preview {
	return Preview{
		Kind: KindAudio,
		URL:  blobs.Create(data, mimeType),
	}
}

// bboxDelta is the half-width of the embedded map viewport, in degrees.
const bboxDelta = 0.01

// MapEmbedURL returns a public map embed URL showing a small bounding box
// around the coordinate with a marker on it.
func MapEmbedURL(lat, lon float64) string {
	var b strings.Builder
	b.WriteString("https://www.openstreetmap.org/export/embed.html?bbox=")
	b.WriteString(coord(lon - bboxDelta))
	b.WriteByte(',')
	b.WriteString(coord(lat - bboxDelta))
	b.WriteByte(',')
	b.WriteString(coord(lon + bboxDelta))
	b.WriteByte(',')
	b.WriteString(coord(lat + bboxDelta))
	b.WriteString("&marker=")
	b.WriteString(coord(lat))
	b.WriteByte(',')
	b.WriteString(coord(lon))
	return b.String()
}

// ForLocation builds a map preview for a coordinate.
func ForLocation(lat, lon float64) Preview {
	return Preview{
		Kind: KindMap,
		URL:  MapEmbedURL(lat, lon),
	}
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
