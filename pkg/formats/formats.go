// Package formats provides parsers for block game data files: binary mesh
// files ("mesh" and physics "phys") and XML block definitions.
package formats
