package policies

import "strings"

// CordaAPIGroup is the group reserved for Corda platform artifacts.
const CordaAPIGroup = "net.corda"

// DefaultReservedPackages are package namespaces owned by the platform.
var DefaultReservedPackages = []string{"net.corda"}

// NamespacePolicy decides which package and group names a CorDapp may
// not claim.
type NamespacePolicy struct {
	ReservedPackages []string
	ReservedGroup    string
}

func NewNamespacePolicy(reserved []string) NamespacePolicy {
	var cleaned []string
	for _, entry := range reserved {
		entry = strings.TrimSuffix(strings.TrimSpace(entry), ".*")
		if entry != "" {
			cleaned = append(cleaned, entry)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultReservedPackages...)
	}
	return NamespacePolicy{ReservedPackages: cleaned, ReservedGroup: CordaAPIGroup}
}

// IsReservedPackage matches the namespace itself and any sub-package, so
// "net.corda.foo" is reserved while "net.cordapp.foo" is not.
func (p NamespacePolicy) IsReservedPackage(pkg string) bool {
	for _, reserved := range p.ReservedPackages {
		if pkg == reserved || strings.HasPrefix(pkg, reserved+".") {
			return true
		}
	}
	return false
}

// GroupStatus classifies an artifact group against the reserved group.
type GroupStatus int

const (
	GroupAllowed GroupStatus = iota
	GroupReserved
	GroupReservedSubgroup
)

func (p NamespacePolicy) ClassifyGroup(group string) GroupStatus {
	reserved := p.ReservedGroup
	if reserved == "" {
		reserved = CordaAPIGroup
	}
	switch {
	case group == reserved:
		return GroupReserved
	case strings.HasPrefix(group, reserved+"."):
		return GroupReservedSubgroup
	default:
		return GroupAllowed
	}
}
