package importer

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// принимаемые форматы дат в таблицах
var dateLayouts = []string{
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate понимает четыре формата; сентинел 0001-01-01 означает
// отсутствие даты.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() == 1 {
			// сентинел "пустой даты"
			return nil, nil
		}
		return &t, nil
	}
	return nil, fmt.Errorf("unrecognized date: %q", s)
}

// пятизначные (и 3834) коды пробуются раньше четырёхзначных, иначе
// "45001..." разобрался бы как 4500+...
var standardCodesLong = []string{"45001", "22000", "22301", "27001", "20000", "50001", "3834"}
var standardCodesShort = []string{"9001", "14001", "18001"}

// ParseStandardCodes разбирает колонку стандартов: коды могут быть
// разделены запятой/точкой/пробелом/точкой с запятой или склеены в одну
// цифровую строку вида "90011400118001". Неразобранный остаток
// возвращается отдельно.
func ParseStandardCodes(raw string) (codes []string, leftover []string) {
	seen := make(map[string]bool)
	for _, token := range splitTokens(raw) {
		run, rest := splitDigitRun(token)
		for _, code := range run {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		if rest != "" {
			leftover = append(leftover, rest)
		}
	}
	return codes, leftover
}

func splitTokens(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
}

// splitDigitRun жадно откусывает известные коды слева направо
func splitDigitRun(run string) (codes []string, rest string) {
	for len(run) > 0 {
		matched := ""
		for _, code := range standardCodesLong {
			if strings.HasPrefix(run, code) {
				matched = code
				break
			}
		}
		if matched == "" {
			for _, code := range standardCodesShort {
				if strings.HasPrefix(run, code) {
					matched = code
					break
				}
			}
		}
		if matched == "" {
			return codes, run
		}
		codes = append(codes, matched)
		run = run[len(matched):]
	}
	return codes, ""
}

// NormalizeIAFEAC добивает ведущий ноль у однозначного числового
// префикса: "6a" → "06a".
func NormalizeIAFEAC(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return code
	}
	digits := 0
	for _, r := range code {
		if !unicode.IsDigit(r) {
			break
		}
		digits++
	}
	if digits == 1 {
		return "0" + code
	}
	return code
}
