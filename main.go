package main

import "github.com/naka-gawa/github-stats-badges/cmd"

func main() {
	cmd.Execute()
}
