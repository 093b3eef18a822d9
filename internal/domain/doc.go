// Package domain contains the core model for mvlaunch.
//
// The domain is scheduler- and persistence-agnostic: it does not depend on
// YAML parsing, os/exec, or the filesystem. Infra/adapters map into/from
// these types.
package domain
