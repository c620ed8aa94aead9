// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"math"

	"github.com/mileusna/useragent"

	"github.com/olegiv/mcms-go/internal/model"
)

// DetectScreen maps a User-Agent to a screen. Bots and unknown agents get
// the desktop rendition.
func DetectScreen(uaString string) string {
	if uaString == "" {
		return model.ScreenDesktop
	}
	ua := useragent.Parse(uaString)
	switch {
	case ua.Tablet:
		return model.ScreenTablet
	case ua.Mobile:
		return model.ScreenMobile
	default:
		return model.ScreenDesktop
	}
}

// TargetSize returns the output size of a srcW x srcH image for a box of
// w x h. Zero means unbounded on that axis. With crop the output has the
// box aspect ratio; otherwise it fits inside the box. The output is never
// larger than the source.
func TargetSize(srcW, srcH, w, h int, crop bool) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if w <= 0 && h <= 0 {
		return srcW, srcH
	}

	if crop && w > 0 && h > 0 {
		f := math.Min(1, math.Min(float64(srcW)/float64(w), float64(srcH)/float64(h)))
		return atLeastOne(float64(w) * f), atLeastOne(float64(h) * f)
	}

	scale := 1.0
	if w > 0 {
		scale = math.Min(scale, float64(w)/float64(srcW))
	}
	if h > 0 {
		scale = math.Min(scale, float64(h)/float64(srcH))
	}
	return atLeastOne(float64(srcW) * scale), atLeastOne(float64(srcH) * scale)
}

func atLeastOne(v float64) int {
	return max(1, int(math.Round(v)))
}
