package password

import (
	"bufio"
	_ "embed"
	"strings"
	"sync"
)

//go:embed common.txt
var commonList string

// commonSet is built on first use and never modified afterwards.
var commonSet = sync.OnceValue(func() map[string]struct{} {
	set := make(map[string]struct{}, 128)
	sc := bufio.NewScanner(strings.NewReader(commonList))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	return set
})

// IsCommon reports whether pw is on the built-in list of common passwords.
// The comparison ignores case.  Safe for concurrent use.
func IsCommon(pw string) bool {
	_, ok := commonSet()[strings.ToLower(pw)]
	return ok
}

// CommonCount returns the number of entries on the common-password list.
func CommonCount() int {
	return len(commonSet())
}
