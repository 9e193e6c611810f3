package main

import (
	"github.com/john-kurkowski/tldextract/cmd"
)

func main() {
	cmd.Execute()
}
