package catalog

import "strings"

type SectionKey string

const (
	SectionStory         SectionKey = "story"
	SectionVocabulary    SectionKey = "vocabulary"
	SectionGrammar       SectionKey = "grammar"
	SectionListening     SectionKey = "listening"
	SectionSpeaking      SectionKey = "speaking"
	SectionReading       SectionKey = "reading"
	SectionWriting       SectionKey = "writing"
	SectionPronunciation SectionKey = "pronunciation"
	SectionCulture       SectionKey = "culture"
	SectionQuiz          SectionKey = "quiz"
)

// Sections lists every module section in lesson order.
var Sections = []SectionKey{
	SectionStory,
	SectionVocabulary,
	SectionGrammar,
	SectionListening,
	SectionSpeaking,
	SectionReading,
	SectionWriting,
	SectionPronunciation,
	SectionCulture,
	SectionQuiz,
}

func ParseSectionKey(raw string) (SectionKey, bool) {
	k := SectionKey(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range Sections {
		if s == k {
			return k, true
		}
	}
	return "", false
}

type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

func ParseLevel(raw string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(raw)))
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return l, true
	}
	return "", false
}
