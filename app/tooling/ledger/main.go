// This program drives a ledger node over its HTTP API.
package main

import "github.com/firstandsecond/bitconin-diy/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
