package sanitize

import (
	"html"
	"strings"
	"unicode"
)

// Clean приводит произвольный пользовательский текст к безопасному виду:
// обрезает пробелы по краям, удаляет управляющие символы и экранирует
// значимые для разметки символы (<, >, &, кавычки).
//
// Функция идемпотентна: Clean(Clean(s)) == Clean(s). Для этого уже
// экранированные сущности сначала декодируются и только потом
// экранируются заново.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = stripControl(s)
	return html.EscapeString(html.UnescapeString(s))
}

// CleanOptional работает как Clean, но пустое после обрезки значение
// превращает в nil, а не в пустую строку.
func CleanOptional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := Clean(s)
	return &v
}

// Blank сообщает, пусто ли значение после обрезки пробелов.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// stripControl удаляет управляющие символы, сохраняя переводы строк
// и табуляцию в многострочных полях.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
