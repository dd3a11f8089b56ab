package main

import "github.com/treehash/treehash/cmd/treehash"

func main() {
	treehash.Execute()
}
