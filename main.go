package main

import (
	"github.com/ValentinKolb/tKV/cmd"
)

func main() {
	cmd.Execute()
}
