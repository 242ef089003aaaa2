// Copyright © 2024 The ELPS authors

package main

import "github.com/coimbrox/progress-4gl-formatter/cmd"

func main() {
	cmd.Execute()
}
