package services

func NextSlide(index int, lastIndex int) int {
	if index+1 > lastIndex {
		return lastIndex
	}
	return index + 1
}

func PreviousSlide(index int, lastIndex int) int {
	if index-1 < 0 {
		return 0
	}
	return index - 1
}

// ProgressPercent reports how far into a sequence of length items the given
// position is, in [0, 100]. Out-of-range positions are clamped first.
func ProgressPercent(index int, length int) float64 {
	if length <= 0 {
		return 0
	}
	position := ClampIndex(index, length)
	return float64(position+1) / float64(length) * 100
}

func ClampIndex(index int, length int) int {
	if length <= 0 || index < 0 {
		return 0
	}
	if index > length-1 {
		return length - 1
	}
	return index
}

func LastIndex(length int) int {
	if length <= 0 {
		return 0
	}
	return length - 1
}
