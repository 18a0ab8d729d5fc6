package tui

import (
	"fmt"
	"strings"
)

// Language selects the picker's UI strings.
type Language int

const (
	English Language = iota
	Korean
)

// ParseLanguage maps a config language code to a Language. Unknown codes
// fall back to English.
func ParseLanguage(code string) Language {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ko", "kor", "korean", "한국어":
		return Korean
	}
	return English
}

func (l Language) String() string {
	if l == Korean {
		return "ko"
	}
	return "en"
}

// translations holds every user-facing picker string.
type translations struct {
	title             string
	searchPlaceholder string
	browseHints       string
	outputHints       string
	emptySkills       string
	noMatches         string
	running           string // %s is the skill name
	waiting           string // %s is the skill name
	skillCount        string // %d shown, %d total
	skipped           func(n int) string
}

var catalog = map[Language]translations{
	English: {
		title:             "pane",
		searchPlaceholder: "search skills",
		browseHints:       "enter run · ↑/↓ select · esc clear/quit",
		outputHints:       "↑/↓ scroll · esc back",
		emptySkills:       "No skills found. Add a pane-skill.yaml under .pane/skills/.",
		noMatches:         "No matching skills.",
		running:           "Running %s...",
		waiting:           "waiting for %s to finish",
		skillCount:        "%d/%d skills",
		skipped: func(n int) string {
			if n == 1 {
				return "1 manifest skipped (pane validate)"
			}
			return fmt.Sprintf("%d manifests skipped (pane validate)", n)
		},
	},
	Korean: {
		title:             "페인",
		searchPlaceholder: "검색어를 입력하세요",
		browseHints:       "enter 실행 · ↑/↓ 선택 · esc 지우기/종료",
		outputHints:       "↑/↓ 스크롤 · esc 닫기",
		emptySkills:       "사용 가능한 스킬이 없습니다. .pane/skills/ 아래에 pane-skill.yaml을 추가하세요.",
		noMatches:         "일치하는 스킬이 없습니다.",
		running:           "%s 실행 중...",
		waiting:           "%s 종료를 기다리는 중",
		skillCount:        "스킬 %d/%d",
		skipped: func(n int) string {
			return fmt.Sprintf("매니페스트 %d개 건너뜀 (pane validate)", n)
		},
	},
}

func textFor(l Language) translations {
	if t, ok := catalog[l]; ok {
		return t
	}
	return catalog[English]
}
