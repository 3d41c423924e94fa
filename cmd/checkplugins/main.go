package main

import (
	"github.com/consol-monitoring/checkplugins/pkg/cmd"
)

func main() {
	cmd.Main()
}
