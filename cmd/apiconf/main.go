// Command apiconf edits API configuration documents with change tracking.
package main

import "github.com/mesh-intelligence/apiconf/internal/cli"

func main() {
	cli.Execute()
}
