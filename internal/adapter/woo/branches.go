package woo

import "fmt"

// BranchPokhara is the courier branch serving the home region.
const BranchPokhara = "POKHARA"

// ncmBranches maps storefront region codes to courier destination branches.
var ncmBranches = func() map[string]string {
	m := make(map[string]string, 81)
	for i := 1; i <= 81; i++ {
		m[fmt.Sprintf("NP%03d", i)] = BranchPokhara
	}
	return m
}()

// Branch returns the courier branch for a region code, or "" when the
// courier does not serve it.
func Branch(state string) string {
	return ncmBranches[state]
}
