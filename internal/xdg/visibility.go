package xdg

import "strings"

// Exclude reports whether an entry with the given NotShowIn and OnlyShowIn
// lists should be hidden in the desktop environment named desktop.
//
// desktop may itself be a colon-separated list as found in
// XDG_CURRENT_DESKTOP; any of its names matches. Tokens compare exactly.
func Exclude(notShowIn, onlyShowIn *string, desktop string) bool {
	names := desktopNames(desktop)
	if notShowIn != nil && containsAny(*notShowIn, names) {
		return true
	}
	if onlyShowIn != nil {
		return !containsAny(*onlyShowIn, names)
	}
	return false
}

func desktopNames(desktop string) []string {
	if desktop == "" {
		return []string{""}
	}
	return strings.Split(desktop, ":")
}

func containsAny(list string, names []string) bool {
	for _, tok := range strings.Split(list, ";") {
		if tok == "" {
			continue
		}
		for _, n := range names {
			if tok == n {
				return true
			}
		}
	}
	return false
}
