// Command spidma runs firmware on the simulated burst serial system.
package main

import "github.com/sarchlab/spidma/spidma/cmd"

func main() {
	cmd.Execute()
}
