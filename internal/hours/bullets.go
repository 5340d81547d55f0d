package hours

import (
	"errors"
	"strings"
)

var (
	ErrEmptyBullet    = errors.New("bullet item is empty")
	ErrBulletNotFound = errors.New("bullet item not found")
)

func isBullet(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "*")
}

// Bullets returns the item text of every "* " line, in order
func Bullets(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		if !isBullet(line) {
			continue
		}
		items = append(items, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*")))
	}
	return items
}

// AppendBullet adds "* item" after the last non-blank line. Every other line,
// including trailing blank padding, is kept verbatim.
func AppendBullet(text, item string) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return text, ErrEmptyBullet
	}
	bullet := "* " + item

	lines := strings.Split(text, "\n")
	last := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			last = i
		}
	}

	if last < 0 {
		lines[0] = bullet
		return strings.Join(lines, "\n"), nil
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:last+1]...)
	out = append(out, bullet)
	out = append(out, lines[last+1:]...)
	return strings.Join(out, "\n"), nil
}

// DeleteBullet removes the bullet at ordinal, counting only "*" lines.
// The result is "" once no bullet lines remain.
func DeleteBullet(text string, ordinal int) (string, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	index, removed, remaining := 0, false, 0

	for _, line := range lines {
		if !isBullet(line) {
			out = append(out, line)
			continue
		}
		if index == ordinal {
			removed = true
		} else {
			out = append(out, line)
			remaining++
		}
		index++
	}

	if !removed {
		return text, ErrBulletNotFound
	}
	if remaining == 0 {
		return "", nil
	}
	return strings.Join(out, "\n"), nil
}
