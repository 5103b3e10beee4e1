// Copyright © 2026 The rpmspec-ls authors

package main

import "github.com/rpmdev/rpmspec-ls/cmd"

func main() {
	cmd.Execute()
}
