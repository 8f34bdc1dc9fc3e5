package handlers

import "strings"

// captionCommand extracts a command from a photo caption. Telegram only
// marks commands in message text, so captions are matched by hand.
func captionCommand(caption, botUsername string) (string, string, bool) {
	caption = strings.TrimSpace(caption)
	if !strings.HasPrefix(caption, "/") {
		return "", "", false
	}

	head, args, _ := strings.Cut(caption[1:], "\n")
	name, rest, _ := strings.Cut(head, " ")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		if botUsername != "" && !strings.EqualFold(name[at+1:], botUsername) {
			return "", "", false
		}
		name = name[:at]
	}
	if name == "" {
		return "", "", false
	}

	switch {
	case rest != "" && args != "":
		args = rest + "\n" + args
	case rest != "":
		args = rest
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}
