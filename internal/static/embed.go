// Package static bundles the lookup tables consumed by the verifier:
// disposable domains, free mailbox providers, role-based local parts,
// common first names, and the MX-substring provider table.
package static

import (
	_ "embed"
	"strings"
)

//go:embed disposable.txt
var rawDisposable string

//go:embed free.txt
var rawFree string

//go:embed roles.txt
var rawRoles string

//go:embed firstnames.txt
var rawFirstNames string

var (
	disposableSet map[string]struct{}
	freeSet       map[string]struct{}
	roleSet       map[string]struct{}
	firstNameSet  map[string]struct{}
)

func init() {
	disposableSet = loadSet(rawDisposable)
	freeSet = loadSet(rawFree)
	roleSet = loadSet(rawRoles)
	firstNameSet = loadSet(rawFirstNames)
}

func loadSet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			set[strings.ToLower(line)] = struct{}{}
		}
	}
	return set
}
