package ocr

import "sort"

// LineTolerance is the vertical distance, in pixel units, within which
// word top edges are considered part of the same line.
const LineTolerance = 4.0

// LinesFromWords groups words into lines by top-y proximity. Words are
// processed top-to-bottom, left-to-right; each group's text is the
// space-joined word text and its bbox the union of the word boxes.
func LinesFromWords(words []Word, tolerance float64) []Line {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y != sorted[j].BBox.Y {
			return sorted[i].BBox.Y < sorted[j].BBox.Y
		}
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	var lines []Line
	var current *Line
	for _, word := range sorted {
		if current == nil {
			lines = append(lines, Line{Text: word.Text, BBox: word.BBox, Words: []Word{word}})
			current = &lines[len(lines)-1]
			continue
		}
		if abs(word.BBox.Y-current.BBox.Y) <= tolerance {
			current.Text += " " + word.Text
			current.Words = append(current.Words, word)
			current.BBox = current.BBox.Union(word.BBox)
		} else {
			lines = append(lines, Line{Text: word.Text, BBox: word.BBox, Words: []Word{word}})
			current = &lines[len(lines)-1]
		}
	}
	return lines
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
