package translate

// DetectLang guesses the language of text by Unicode script ranges.
// Japanese syllabaries win over CJK ideographs (Japanese text mixes kanji
// with kana, Chinese text has no kana), hangul marks Korean, bare ideographs
// mark Chinese, and anything else falls back to English. Best-effort only;
// it is not on the mandatory translation path.
func DetectLang(text string) Lang {
	var ideographs int

	for _, r := range text {
		switch {
		case r >= 0x3040 && r <= 0x309F, // hiragana
			r >= 0x30A0 && r <= 0x30FF: // katakana
			return LangJapanese
		case r >= 0xAC00 && r <= 0xD7A3, // hangul syllables
			r >= 0x1100 && r <= 0x11FF: // hangul jamo
			return LangKorean
		case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
			ideographs++
		}
	}

	if ideographs > 0 {
		return LangChinese
	}
	return LangEnglish
}
