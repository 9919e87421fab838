//go:build !windows

package macro

// HostFamily is the family of the platform this tool was built for.
// Paths produced for a different target use the wrong separator unless the
// family is set explicitly with [WithFamily].
const HostFamily = FamilyUnix
