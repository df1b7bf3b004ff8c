package utils

import (
	"os"
	"os/user"
	"regexp"
	"strconv"
	"strings"
)

var (
	invalidNicknameChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	repeatedHyphens      = regexp.MustCompile(`-+`)
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	return os.Hostname()
}

// SanitizeNickname lowercases name, turns spaces into hyphens and drops
// anything that is not alphanumeric, a hyphen or an underscore.
func SanitizeNickname(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidNicknameChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if name == "" {
		name = "key"
	}
	return name
}

// GenerateNickname builds a default credential nickname from the hostname
// and the authenticator kind, e.g. "laptop-softkey". A numeric suffix is
// appended when the name is already taken, ignoring case.
func GenerateNickname(kind string, existing []string) string {
	host, err := GetHostname()
	if err != nil || host == "" {
		host, err = GetUsername()
		if err != nil {
			host = ""
		}
	}
	return uniqueNickname(SanitizeNickname(host+" "+kind), existing)
}

func uniqueNickname(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = true
	}

	name := base
	for suffix := 2; taken[strings.ToLower(name)]; suffix++ {
		name = base + "-" + strconv.Itoa(suffix)
	}
	return name
}
