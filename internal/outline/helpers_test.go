package outline

// line builds a line from s, one glyph per rune, all in one style.
func line(s, font string, size float64, color string) Line {
	var l Line
	for _, r := range s {
		l = append(l, Glyph{Text: string(r), FontName: font, FontSize: size, ColorKey: color})
	}
	return l
}

func elem(text, font string, size float64, page int) Element {
	return Element{
		Text:            text,
		Style:           StyleKey{FontName: font, FontSize: size, ColorKey: "0"},
		OperationalPage: page,
	}
}

func intPtr(n int) *int { return &n }
