package storage

import (
	"fmt"
	"strings"

	"github.com/san-kum/soapsort/internal/metrics"
)

// HistoryToSVG draws inversions against interaction number as a single path.
func HistoryToSVG(history []metrics.Sample, width, height int, strokeColor string) string {
	if len(history) < 2 {
		return ""
	}

	minX, maxX := float64(history[0].Interaction), float64(history[0].Interaction)
	maxY := 0.0
	for _, h := range history {
		x, y := float64(h.Interaction), float64(h.Inversions)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}

	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	if maxY == 0 {
		maxY = 1
	}
	// 5% padding on each side
	padX, padY := float64(width)*0.05, float64(height)*0.05
	plotW, plotH := float64(width)-2*padX, float64(height)-2*padY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, h := range history {
		x := padX + (float64(h.Interaction)-minX)/rangeX*plotW
		y := padY + plotH - float64(h.Inversions)/maxY*plotH

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
