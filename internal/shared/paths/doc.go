// Package paths provides canonical path algebra for the virtual filesystem.
//
// Every entry in the store is keyed by its canonical path: absolute,
// slash-separated, with no empty, "." or ".." segments and no trailing
// slash except for the root itself.
//
// # Canonical Form
//
//	"a/./b"        -> "/a/b"
//	"/a/b/../c"    -> "/a/c"
//	"/../.."       -> "/"
//	"//x//y/"      -> "/x/y"
//
// Excess ".." segments at the root are dropped rather than rejected.
// The empty string is the only input Normalize refuses.
//
// # Usage
//
//	import "github.com/GriffinCanCode/docfs/internal/shared/paths"
//
//	p, err := paths.Normalize("docs/../src/main.go") // "/src/main.go"
//	parent, ok := paths.Parent(p)                     // "/src", true
//	name := paths.Leaf(p)                             // "main.go"
//
//	// Resolve shell input against a working directory
//	next, err := paths.ResolveRelative("/home/user", "../shared")
package paths
