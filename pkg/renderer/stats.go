package renderer

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
)

// BandStats describes one rendered row band
type BandStats struct {
	Worker  int
	MinRow  int
	MaxRow  int
	Elapsed time.Duration
}

// Rows is the number of rows in the band
func (b BandStats) Rows() int {
	return b.MaxRow - b.MinRow
}

// RenderStats contains statistics about one camera's render
type RenderStats struct {
	ImageName    string
	Width        int
	Height       int
	RaysPerPixel int
	Mode         string
	Workers      int
	Primitives   int
	BVHNodes     int
	BVHMaxDepth  int
	Bands        []BandStats
	Elapsed      time.Duration
}

// TotalRays is the number of camera rays traced for the frame
func (s RenderStats) TotalRays() int {
	return s.Width * s.Height * s.RaysPerPixel
}

// Table renders the per-band timings as a text table
func (s RenderStats) Table() string {
	bands := append([]BandStats(nil), s.Bands...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinRow < bands[j].MinRow })

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Rows", "Worker", "% of frame", "Render time"})
	for _, band := range bands {
		share := 0.0
		if s.Height > 0 {
			share = 100 * float64(band.Rows()) / float64(s.Height)
		}
		table.Append([]string{
			fmt.Sprintf("%d-%d", band.MinRow, band.MaxRow-1),
			fmt.Sprintf("%d", band.Worker),
			fmt.Sprintf("%5.1f%%", share),
			band.Elapsed.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", s.Elapsed.Round(time.Millisecond).String()})
	table.Render()

	return buf.String()
}

// Summary is a one line description of the render
func (s RenderStats) Summary() string {
	return fmt.Sprintf("%s: %dx%d, %s, %d rays/pixel, %d primitives (BVH %d nodes, depth %d), %d workers, %s",
		s.ImageName, s.Width, s.Height, s.Mode, s.RaysPerPixel, s.Primitives,
		s.BVHNodes, s.BVHMaxDepth, s.Workers, s.Elapsed.Round(time.Millisecond))
}
