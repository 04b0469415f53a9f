package bot

import (
	"fmt"
	"strings"

	"mvdan.cc/xurls/v2"
)

// singleURL reports whether the message consists of exactly one https link.
func singleURL(text string) (string, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \t\n") {
		return "", false, nil
	}

	httpsURLRe, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		return "", false, fmt.Errorf("create regexp: %w", err)
	}

	if match := httpsURLRe.FindString(text); match != "" && match == text {
		return match, true, nil
	}

	return "", false, nil
}
