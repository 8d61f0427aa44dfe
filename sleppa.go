// Package sleppa decides whether a squash-and-merge repository is due
// for a release, computes the next semantic version, and synthesizes a
// changelog section for it.
//
// Related packages: config, commit, changelog, runner, model, vcs,
// vcs/gitsrc, vcs/gitcli, vcs/github
package sleppa

import "github.com/SofairOfficial/sleppa/config"

// Config holds most of the configuration variables for sleppa. This
// struct is intended for command-line use, so not all of its attributes
// are applicable to every operation.
//
// See "go doc github.com/SofairOfficial/sleppa/config Config" for more
// information.
type Config = config.Config
