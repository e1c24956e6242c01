// Package main implements the stackup CLI, which deploys and tears down
// the fotogram two-tier infrastructure on AWS.
package main

import "github.com/fotogram/stackup/cmd/stackup/cmd"

func main() {
	cmd.Execute()
}
