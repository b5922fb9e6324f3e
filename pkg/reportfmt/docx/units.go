package docx

import "math"

// EMUPerPixel is the number of EMUs per pixel at 96 DPI (914400 / 96).
const EMUPerPixel = 9525

// EMUPerMM is the number of EMUs per millimetre.
const EMUPerMM = 36000

// TwipsPerPoint is the number of twentieths of a point in a point.
const TwipsPerPoint = 20

// LineUnit is the w:line value of single line spacing with lineRule "auto".
const LineUnit = 240

// MMToEMU converts millimetres to EMU.
func MMToEMU(mm float64) int64 {
	return int64(math.Round(mm * EMUPerMM))
}

// MMToTwips converts millimetres to twips (1440 per inch).
func MMToTwips(mm float64) int {
	return int(math.Round(mm * 1440 / 25.4))
}

// PointsToTwips converts points to twips.
func PointsToTwips(pt float64) int {
	return int(math.Round(pt * TwipsPerPoint))
}

// PointsToHalfPoints converts a font size in points to the w:sz unit.
func PointsToHalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

// PointsToEighths converts a border width in points to the w:sz unit of
// borders.
func PointsToEighths(pt float64) int {
	return int(math.Round(pt * 8))
}

// LineSpacing converts a line spacing multiple to the w:line value.
func LineSpacing(multiple float64) int {
	return int(math.Round(multiple * LineUnit))
}
