// Package hostuser resolves accounts of the host system.
package hostuser

import (
	"fmt"
	"os/user"
	"strconv"
)

// Account is a host user together with the group it runs as.
type Account struct {
	Name  string
	UID   int
	Group string
	GID   int
}

// Lookup resolves name (a user name or uid, empty for the current user) and
// group (a group name or gid, empty for the user's primary group).
func Lookup(name, group string) (Account, error) {
	u, err := lookupUser(name)
	if err != nil {
		return Account{}, fmt.Errorf("could not resolve user %q: %w", name, err)
	}
	if group == "" {
		group = u.Gid
	}
	g, err := lookupGroup(group)
	if err != nil {
		return Account{}, fmt.Errorf("could not resolve group %q: %w", group, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Account{}, fmt.Errorf("non-numeric uid %q", u.Uid)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return Account{}, fmt.Errorf("non-numeric gid %q", g.Gid)
	}
	return Account{Name: u.Username, UID: uid, Group: g.Name, GID: gid}, nil
}

func lookupUser(name string) (*user.User, error) {
	if name == "" {
		return user.Current()
	}
	if _, err := strconv.Atoi(name); err == nil {
		return user.LookupId(name)
	}
	return user.Lookup(name)
}

func lookupGroup(name string) (*user.Group, error) {
	if _, err := strconv.Atoi(name); err == nil {
		return user.LookupGroupId(name)
	}
	return user.LookupGroup(name)
}
