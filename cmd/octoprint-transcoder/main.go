package main

import "github.com/drogue-iot/octoprint-transcoder/cmd/octoprint-transcoder/cmd"

func main() {
	cmd.Execute()
}
